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

// BuildDefinition describes what was built and how. The parameter fields are
// build-type specific and deliberately unconstrained by the schema; they are
// carried as opaque JSON and reproduced byte for byte on serialization.
type BuildDefinition struct {
	buildType            string
	externalParameters   json.RawMessage
	internalParameters   json.RawMessage
	resolvedDependencies []ResourceDescriptor
	extraProperties
}

// BuildType is the URI identifying the template for how the build was
// performed, which gives the parameter fields their meaning.
func (b BuildDefinition) BuildType() string {
	return b.buildType
}

// ExternalParameters returns the verbatim parameters under external control,
// such as those from a build request. Any JSON value is possible here,
// including null.
func (b BuildDefinition) ExternalParameters() json.RawMessage {
	return rawOrNull(b.externalParameters)
}

// InternalParameters returns the verbatim parameters under the builder's own
// control.
func (b BuildDefinition) InternalParameters() json.RawMessage {
	return rawOrNull(b.internalParameters)
}

// ResolvedDependencies lists the artifacts the build needed, in document
// order. The sequence may be empty, never absent.
func (b BuildDefinition) ResolvedDependencies() []ResourceDescriptor {
	return slices.Clone(b.resolvedDependencies)
}

// NewBuildDefinition builds the description of what was built. The parameter
// values are arbitrary JSON kept verbatim; nil is recorded as JSON null.
func NewBuildDefinition(buildType string, externalParameters, internalParameters json.RawMessage, resolvedDependencies []ResourceDescriptor) (BuildDefinition, error) {
	if err := ValidateURI(buildType); err != nil {
		return BuildDefinition{}, fmt.Errorf("buildType: %w", err)
	}
	external, err := normalizeRaw(externalParameters)
	if err != nil {
		return BuildDefinition{}, fmt.Errorf("externalParameters: %w", err)
	}
	internal, err := normalizeRaw(internalParameters)
	if err != nil {
		return BuildDefinition{}, fmt.Errorf("internalParameters: %w", err)
	}
	for i, dep := range resolvedDependencies {
		if err := ValidateURI(dep.uri); err != nil {
			return BuildDefinition{}, fmt.Errorf("resolvedDependencies[%d]: uri: %w", i, err)
		}
	}
	deps := slices.Clone(resolvedDependencies)
	if deps == nil {
		deps = []ResourceDescriptor{}
	}

	return BuildDefinition{
		buildType:            buildType,
		externalParameters:   external,
		internalParameters:   internal,
		resolvedDependencies: deps,
	}, nil
}

func parseBuildDefinition(path jsonpointer.Pointer, raw json.RawMessage, c *collector) BuildDefinition {
	obj, ok := decodeObject(path, raw, c)
	if !ok {
		return BuildDefinition{}
	}

	b := BuildDefinition{}
	if v, ok := obj["buildType"]; ok {
		b.buildType, _ = parseFormatted(child(path, "buildType"), v, formatURI, c)
	} else {
		c.report(missingField(child(path, "buildType")))
	}
	if v, ok := obj["externalParameters"]; ok {
		b.externalParameters = v
	} else {
		c.report(missingField(child(path, "externalParameters")))
	}
	if v, ok := obj["internalParameters"]; ok {
		b.internalParameters = v
	} else {
		c.report(missingField(child(path, "internalParameters")))
	}
	if v, ok := obj["resolvedDependencies"]; ok {
		b.resolvedDependencies = parseDescriptorList(child(path, "resolvedDependencies"), v, c)
	} else {
		c.report(missingField(child(path, "resolvedDependencies")))
	}
	b.extra = remaining(obj, "buildType", "externalParameters", "internalParameters", "resolvedDependencies")

	return b
}

func (b BuildDefinition) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.value("buildType", b.buildType)
	w.raw("externalParameters", b.externalParameters)
	w.raw("internalParameters", b.internalParameters)
	w.descriptorList("resolvedDependencies", b.resolvedDependencies)
	w.extras(b.extra)

	return w.finish()
}
