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

	"github.com/hashicorp/go-multierror"
	"github.com/qri-io/jsonpointer"

	"github.com/conforma/slsa-provenance/internal/utils"
)

// Kind classifies a validation failure.
type Kind int

const (
	// KindMissingField flags a required property that is not in the document.
	KindMissingField Kind = iota
	// KindWrongType flags a property whose JSON type is not the declared one.
	KindWrongType
	// KindBadFormat flags a string that does not satisfy its format
	// constraint.
	KindBadFormat
)

func (k Kind) String() string {
	switch k {
	case KindMissingField:
		return "missing field"
	case KindWrongType:
		return "wrong type"
	case KindBadFormat:
		return "bad format"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// ValidationError describes a single structural violation found in a
// provenance document. Path locates the offending property as a JSON
// pointer; violations inside descriptor sequences carry the element index in
// the pointer, e.g. /buildDefinition/resolvedDependencies/2/uri.
type ValidationError struct {
	Path jsonpointer.Pointer
	Kind Kind
	// Expected and Actual name JSON types; set for KindWrongType.
	Expected string
	Actual   string
	// Format is "uri" or "date-time"; set for KindBadFormat.
	Format string
	// Cause carries the underlying failure, when one exists.
	Cause error
}

func (e *ValidationError) Error() string {
	path := "document"
	if len(e.Path) > 0 {
		path = e.Path.String()
	}

	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("%s: required property is missing", path)
	case KindWrongType:
		return fmt.Sprintf("%s: expected %s, found %s", path, e.Expected, e.Actual)
	case KindBadFormat:
		if e.Cause != nil {
			return fmt.Sprintf("%s: not a valid %s: %s", path, e.Format, e.Cause)
		}
		return fmt.Sprintf("%s: not a valid %s", path, e.Format)
	}

	return fmt.Sprintf("%s: invalid", path)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// AsError folds a list of validation failures into a single error, nil when
// the list is empty.
func AsError(errs []ValidationError) error {
	var merr *multierror.Error
	for i := range errs {
		merr = multierror.Append(merr, &errs[i])
	}

	return merr.ErrorOrNil()
}

// collector gathers validation failures during a document walk. The walk
// visits properties in declaration order and sequence elements in index
// order, so the failures come out in a stable order and the first recorded
// one is the first the document contains.
type collector struct {
	errs []ValidationError
}

func (c *collector) report(err ValidationError) {
	c.errs = append(c.errs, err)
}

func (c *collector) ok() bool {
	return len(c.errs) == 0
}

func (c *collector) first() error {
	if len(c.errs) == 0 {
		return nil
	}

	return &c.errs[0]
}

func missingField(path jsonpointer.Pointer) ValidationError {
	return ValidationError{Path: path, Kind: KindMissingField}
}

func wrongType(path jsonpointer.Pointer, expected string, raw json.RawMessage) ValidationError {
	return ValidationError{Path: path, Kind: KindWrongType, Expected: expected, Actual: utils.JSONType(raw)}
}

func badFormat(path jsonpointer.Pointer, format string, cause error) ValidationError {
	return ValidationError{Path: path, Kind: KindBadFormat, Format: format, Cause: cause}
}
