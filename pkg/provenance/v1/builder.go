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
	"fmt"

	"github.com/qri-io/jsonpointer"
	"golang.org/x/exp/slices"
)

// Builder identifies the entity that performed the build.
type Builder struct {
	id                  string
	version             Nullable[string]
	builderDependencies Nullable[[]ResourceDescriptor]
	extraProperties
}

// ID is the URI identifying the builder.
func (b Builder) ID() string {
	return b.id
}

// Version is the version of the builder at the time of the build.
func (b Builder) Version() Nullable[string] {
	return b.version
}

// BuilderDependencies lists dependencies of the builder itself, as opposed
// to dependencies of the build it ran.
func (b Builder) BuilderDependencies() Nullable[[]ResourceDescriptor] {
	if deps, ok := b.builderDependencies.Get(); ok {
		return valueOf(slices.Clone(deps))
	}

	return b.builderDependencies
}

// BuilderOption sets one of the optional builder fields.
type BuilderOption func(*Builder) error

// NewBuilder builds the identity of the build platform named by id.
func NewBuilder(id string, opts ...BuilderOption) (Builder, error) {
	if err := ValidateURI(id); err != nil {
		return Builder{}, fmt.Errorf("id: %w", err)
	}

	b := Builder{id: id}
	for _, opt := range opts {
		if err := opt(&b); err != nil {
			return Builder{}, err
		}
	}

	return b, nil
}

// WithVersion sets the builder version.
func WithVersion(version string) BuilderOption {
	return func(b *Builder) error {
		b.version = valueOf(version)
		return nil
	}
}

// WithBuilderDependencies sets the builder's own dependencies.
func WithBuilderDependencies(deps ...ResourceDescriptor) BuilderOption {
	return func(b *Builder) error {
		for i, dep := range deps {
			if err := ValidateURI(dep.uri); err != nil {
				return fmt.Errorf("builderDependencies[%d]: uri: %w", i, err)
			}
		}
		cloned := slices.Clone(deps)
		if cloned == nil {
			cloned = []ResourceDescriptor{}
		}
		b.builderDependencies = valueOf(cloned)

		return nil
	}
}

func parseBuilder(path jsonpointer.Pointer, raw json.RawMessage, c *collector) Builder {
	obj, ok := decodeObject(path, raw, c)
	if !ok {
		return Builder{}
	}

	b := Builder{}
	if v, ok := obj["id"]; ok {
		b.id, _ = parseFormatted(child(path, "id"), v, formatURI, c)
	} else {
		c.report(missingField(child(path, "id")))
	}
	if v, ok := obj["version"]; ok {
		b.version = parseNullableString(child(path, "version"), v, "", c)
	}
	if v, ok := obj["builderDependencies"]; ok {
		b.builderDependencies = parseNullableDescriptorList(child(path, "builderDependencies"), v, c)
	}
	b.extra = remaining(obj, "id", "version", "builderDependencies")

	return b
}

func (b Builder) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.value("id", b.id)
	writeNullable(w, "version", b.version)
	writeNullableDescriptors(w, "builderDependencies", b.builderDependencies)
	w.extras(b.extra)

	return w.finish()
}
