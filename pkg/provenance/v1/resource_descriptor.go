// Copyright The Conforma Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/in-toto/in-toto-golang/in_toto/slsa_provenance/common"
	"github.com/package-url/packageurl-go"
	"github.com/qri-io/jsonpointer"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/conforma/slsa-provenance/internal/utils"
)

// ResourceDescriptor references a resource used somewhere in the build: an
// artifact, a dependency or a byproduct. Only the uri is mandatory; every
// other field is independently optional.
type ResourceDescriptor struct {
	uri              string
	name             *string
	downloadLocation *string
	mediaType        *string
	digest           Nullable[common.DigestSet]
	content          *string
	annotations      json.RawMessage
	extraProperties
}

// URI identifies the resource.
func (r ResourceDescriptor) URI() string {
	return r.uri
}

// Name is the builder's name for the resource; ok is false when the document
// did not carry one.
func (r ResourceDescriptor) Name() (string, bool) {
	return optString(r.name)
}

// DownloadLocation is the URI the resource was downloaded from, when that
// differs from the identifying uri.
func (r ResourceDescriptor) DownloadLocation() (string, bool) {
	return optString(r.downloadLocation)
}

// MediaType is the IANA media type of the resource.
func (r ResourceDescriptor) MediaType() (string, bool) {
	return optString(r.mediaType)
}

// Digest maps digest-algorithm names to encoded hash values, content
// addressing the resource. All three document states are observable: absent,
// explicit null and present with a value.
func (r ResourceDescriptor) Digest() Nullable[common.DigestSet] {
	if ds, ok := r.digest.Get(); ok {
		return valueOf(maps.Clone(ds))
	}

	return r.digest
}

// Content is the resource itself, inlined in whatever encoding the producer
// chose. No decoding is attempted here.
func (r ResourceDescriptor) Content() (string, bool) {
	return optString(r.content)
}

// Annotations returns the verbatim annotations value, nil when absent. An
// explicit null annotation comes back as the JSON null literal.
func (r ResourceDescriptor) Annotations() json.RawMessage {
	return slices.Clone(r.annotations)
}

// PackageURL parses the descriptor uri as a package URL. Build platforms
// commonly identify resolved dependencies with pkg: URIs; callers matching
// descriptors against package coordinates get the parsed form here.
func (r ResourceDescriptor) PackageURL() (packageurl.PackageURL, error) {
	instance, err := packageurl.FromString(r.uri)
	if err != nil {
		log.Debugf("Unable to parse descriptor uri %q as a package URL: %s", r.uri, err)
		return packageurl.PackageURL{}, err
	}

	return instance, nil
}

// ResourceDescriptorOption sets one of the optional descriptor fields.
type ResourceDescriptorOption func(*ResourceDescriptor) error

// NewResourceDescriptor builds a descriptor for the resource identified by
// uri.
func NewResourceDescriptor(uri string, opts ...ResourceDescriptorOption) (ResourceDescriptor, error) {
	if err := ValidateURI(uri); err != nil {
		return ResourceDescriptor{}, fmt.Errorf("uri: %w", err)
	}

	r := ResourceDescriptor{uri: uri}
	for _, opt := range opts {
		if err := opt(&r); err != nil {
			return ResourceDescriptor{}, err
		}
	}

	return r, nil
}

// WithName sets the builder's name for the resource.
func WithName(name string) ResourceDescriptorOption {
	return func(r *ResourceDescriptor) error {
		r.name = &name
		return nil
	}
}

// WithDownloadLocation sets the URI the resource was downloaded from.
func WithDownloadLocation(location string) ResourceDescriptorOption {
	return func(r *ResourceDescriptor) error {
		if err := ValidateURI(location); err != nil {
			return fmt.Errorf("downloadLocation: %w", err)
		}
		r.downloadLocation = &location

		return nil
	}
}

// WithMediaType sets the IANA media type of the resource.
func WithMediaType(mediaType string) ResourceDescriptorOption {
	return func(r *ResourceDescriptor) error {
		r.mediaType = &mediaType
		return nil
	}
}

// WithDigest sets the digest mapping for the resource.
func WithDigest(digest common.DigestSet) ResourceDescriptorOption {
	return func(r *ResourceDescriptor) error {
		ds := maps.Clone(digest)
		if ds == nil {
			ds = common.DigestSet{}
		}
		r.digest = valueOf(ds)

		return nil
	}
}

// WithContent inlines the resource content.
func WithContent(content string) ResourceDescriptorOption {
	return func(r *ResourceDescriptor) error {
		r.content = &content
		return nil
	}
}

// WithAnnotations sets the annotations to any valid JSON value, kept
// verbatim.
func WithAnnotations(annotations json.RawMessage) ResourceDescriptorOption {
	return func(r *ResourceDescriptor) error {
		if !json.Valid(annotations) {
			return errors.New("annotations: not valid JSON")
		}
		r.annotations = slices.Clone(annotations)

		return nil
	}
}

func parseResourceDescriptor(path jsonpointer.Pointer, raw json.RawMessage, c *collector) ResourceDescriptor {
	obj, ok := decodeObject(path, raw, c)
	if !ok {
		return ResourceDescriptor{}
	}

	r := ResourceDescriptor{}
	if v, ok := obj["uri"]; ok {
		r.uri, _ = parseFormatted(child(path, "uri"), v, formatURI, c)
	} else {
		c.report(missingField(child(path, "uri")))
	}
	if v, ok := obj["name"]; ok {
		if s, ok := parseString(child(path, "name"), v, c); ok {
			r.name = &s
		}
	}
	if v, ok := obj["downloadLocation"]; ok {
		if s, ok := parseFormatted(child(path, "downloadLocation"), v, formatURI, c); ok {
			r.downloadLocation = &s
		}
	}
	if v, ok := obj["mediaType"]; ok {
		if s, ok := parseString(child(path, "mediaType"), v, c); ok {
			r.mediaType = &s
		}
	}
	if v, ok := obj["digest"]; ok {
		r.digest = parseDigest(child(path, "digest"), v, c)
	}
	if v, ok := obj["content"]; ok {
		if s, ok := parseString(child(path, "content"), v, c); ok {
			r.content = &s
		}
	}
	if v, ok := obj["annotations"]; ok {
		r.annotations = v
	}
	r.extra = remaining(obj, "uri", "name", "downloadLocation", "mediaType", "digest", "content", "annotations")

	return r
}

// parseDigest accepts null or an object whose every value is a string. The
// algorithm names are visited in sorted order so that violations are
// reported deterministically.
func parseDigest(path jsonpointer.Pointer, raw json.RawMessage, c *collector) Nullable[common.DigestSet] {
	if utils.JSONType(raw) == "null" {
		return nullOf[common.DigestSet]()
	}

	entries, ok := decodeObject(path, raw, c)
	if !ok {
		return Nullable[common.DigestSet]{}
	}

	ds := make(common.DigestSet, len(entries))
	algorithms := maps.Keys(entries)
	slices.Sort(algorithms)
	for _, algorithm := range algorithms {
		if s, ok := parseString(child(path, algorithm), entries[algorithm], c); ok {
			ds[algorithm] = s
		}
	}

	return valueOf(ds)
}

func (r ResourceDescriptor) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.value("uri", r.uri)
	if r.name != nil {
		w.value("name", *r.name)
	}
	if r.downloadLocation != nil {
		w.value("downloadLocation", *r.downloadLocation)
	}
	if r.mediaType != nil {
		w.value("mediaType", *r.mediaType)
	}
	writeNullable(w, "digest", r.digest)
	if r.content != nil {
		w.value("content", *r.content)
	}
	if r.annotations != nil {
		w.raw("annotations", r.annotations)
	}
	w.extras(r.extra)

	return w.finish()
}
