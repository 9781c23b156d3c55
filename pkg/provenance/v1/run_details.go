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

	"github.com/qri-io/jsonpointer"
	"golang.org/x/exp/slices"
)

// RunDetails records how the build was actually executed: by which builder,
// under which invocation, with which side artifacts.
type RunDetails struct {
	builder    Builder
	metadata   Metadata
	byproducts Nullable[[]ResourceDescriptor]
	extraProperties
}

// Builder identifies the entity that ran the build.
func (r RunDetails) Builder() Builder {
	return r.builder
}

// Metadata holds the invocation identity and timing.
func (r RunDetails) Metadata() Metadata {
	return r.metadata
}

// Byproducts lists artifacts generated during the build that are not its
// subject.
func (r RunDetails) Byproducts() Nullable[[]ResourceDescriptor] {
	if b, ok := r.byproducts.Get(); ok {
		return valueOf(slices.Clone(b))
	}

	return r.byproducts
}

// RunDetailsOption sets one of the optional run detail fields.
type RunDetailsOption func(*RunDetails) error

// NewRunDetails composes the execution record from a builder identity and
// invocation metadata, both of which must come from their constructors.
func NewRunDetails(builder Builder, metadata Metadata, opts ...RunDetailsOption) (RunDetails, error) {
	if builder.id == "" {
		return RunDetails{}, errors.New("builder is required")
	}
	if metadata.startedOn == "" {
		return RunDetails{}, errors.New("metadata is required")
	}

	r := RunDetails{builder: builder, metadata: metadata}
	for _, opt := range opts {
		if err := opt(&r); err != nil {
			return RunDetails{}, err
		}
	}

	return r, nil
}

// WithByproducts sets the artifacts generated during the build beyond its
// subject.
func WithByproducts(byproducts ...ResourceDescriptor) RunDetailsOption {
	return func(r *RunDetails) error {
		for i, b := range byproducts {
			if err := ValidateURI(b.uri); err != nil {
				return fmt.Errorf("byproducts[%d]: uri: %w", i, err)
			}
		}
		cloned := slices.Clone(byproducts)
		if cloned == nil {
			cloned = []ResourceDescriptor{}
		}
		r.byproducts = valueOf(cloned)

		return nil
	}
}

func parseRunDetails(path jsonpointer.Pointer, raw json.RawMessage, c *collector) RunDetails {
	obj, ok := decodeObject(path, raw, c)
	if !ok {
		return RunDetails{}
	}

	r := RunDetails{}
	if v, ok := obj["builder"]; ok {
		r.builder = parseBuilder(child(path, "builder"), v, c)
	} else {
		c.report(missingField(child(path, "builder")))
	}
	if v, ok := obj["metadata"]; ok {
		r.metadata = parseMetadata(child(path, "metadata"), v, c)
	} else {
		c.report(missingField(child(path, "metadata")))
	}
	if v, ok := obj["byproducts"]; ok {
		r.byproducts = parseNullableDescriptorList(child(path, "byproducts"), v, c)
	}
	r.extra = remaining(obj, "builder", "metadata", "byproducts")

	return r
}

func (r RunDetails) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.marshaler("builder", r.builder)
	w.marshaler("metadata", r.metadata)
	writeNullableDescriptors(w, "byproducts", r.byproducts)
	w.extras(r.extra)

	return w.finish()
}
