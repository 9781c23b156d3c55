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

// Package v1 implements the SLSA Provenance v1 predicate: a typed model of
// build provenance together with parsing, validation and lossless
// serialization.
//
// ParsePredicate is strict and fail-fast, for the common case of consuming a
// single attestation payload. ValidatePredicate walks the whole document and
// reports every violation, for diagnostics and tooling. Both enforce the
// same constraints: required properties, JSON value types, and the uri and
// date-time string formats.
//
// Parsed values are immutable. Serialization reproduces opaque values byte
// for byte and keeps properties beyond the declared schema, so a parsed
// document survives a round trip without loss.
package v1

import (
	"encoding/json"
	"errors"

	"github.com/qri-io/jsonpointer"
	log "github.com/sirupsen/logrus"
)

// PredicateSLSAProvenance is the predicate type URI of SLSA Provenance v1
// attestations.
const PredicateSLSAProvenance = "https://slsa.dev/provenance/v1"

// Predicate is the SLSA Provenance v1 predicate: the payload of a build
// provenance attestation, describing what was built and how.
type Predicate struct {
	buildDefinition BuildDefinition
	runDetails      RunDetails
	extraProperties
}

// BuildDefinition describes what was built and how.
func (p Predicate) BuildDefinition() BuildDefinition {
	return p.buildDefinition
}

// RunDetails describes how the build was executed and by whom.
func (p Predicate) RunDetails() RunDetails {
	return p.runDetails
}

// NewPredicate composes a predicate from its two constituent parts, which
// must themselves come from their constructors.
func NewPredicate(buildDefinition BuildDefinition, runDetails RunDetails) (Predicate, error) {
	if buildDefinition.buildType == "" {
		return Predicate{}, errors.New("buildDefinition is required")
	}
	if runDetails.builder.id == "" {
		return Predicate{}, errors.New("runDetails is required")
	}

	return Predicate{buildDefinition: buildDefinition, runDetails: runDetails}, nil
}

// ParsePredicate parses and validates a provenance predicate document,
// returning the first violation it finds as a *ValidationError. Input that
// is not JSON at all fails with the decoder's own error. No partial result
// is ever returned.
func ParsePredicate(data []byte) (*Predicate, error) {
	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	c := collector{}
	p := parsePredicate(doc, &c)
	if err := c.first(); err != nil {
		log.Debugf("Provenance predicate rejected: %s", err)
		return nil, err
	}

	return p, nil
}

// ValidatePredicate checks the whole document and returns every violation,
// ordered by a fixed traversal: properties in schema declaration order, array
// elements by index. ParsePredicate surfaces only the first of the same
// findings. The error return is reserved for input that is not JSON at all.
// Fold the violations into a single error with AsError when one is needed.
func ValidatePredicate(data []byte) ([]ValidationError, error) {
	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	c := collector{}
	parsePredicate(doc, &c)
	if len(c.errs) > 0 {
		log.Debugf("Provenance predicate has %d violations", len(c.errs))
	}

	return c.errs, nil
}

func parsePredicate(raw json.RawMessage, c *collector) *Predicate {
	root := jsonpointer.Pointer{}
	obj, ok := decodeObject(root, raw, c)
	if !ok {
		return nil
	}

	p := Predicate{}
	if v, ok := obj["buildDefinition"]; ok {
		p.buildDefinition = parseBuildDefinition(child(root, "buildDefinition"), v, c)
	} else {
		c.report(missingField(child(root, "buildDefinition")))
	}
	if v, ok := obj["runDetails"]; ok {
		p.runDetails = parseRunDetails(child(root, "runDetails"), v, c)
	} else {
		c.report(missingField(child(root, "runDetails")))
	}
	p.extra = remaining(obj, "buildDefinition", "runDetails")

	if !c.ok() {
		return nil
	}

	return &p
}

// MarshalJSON serializes the predicate with a deterministic member order:
// declared properties in schema order, then any unrecognized properties
// sorted by name. Opaque values are emitted exactly as parsed.
func (p Predicate) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.marshaler("buildDefinition", p.buildDefinition)
	w.marshaler("runDetails", p.runDetails)
	w.extras(p.extra)

	return w.finish()
}

// UnmarshalJSON is ParsePredicate in json.Unmarshaler form.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	parsed, err := ParsePredicate(data)
	if err != nil {
		return err
	}
	*p = *parsed

	return nil
}
