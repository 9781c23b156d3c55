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
	"time"

	"github.com/qri-io/jsonpointer"
)

// Metadata records the identity and timing of the build invocation.
// Timestamps are kept in the exact RFC 3339 form the document carried, so
// re-serializing reproduces them byte for byte; the accessors parse on
// demand.
type Metadata struct {
	invocationID string
	startedOn    string
	finishedOn   Nullable[string]
	extraProperties
}

// InvocationID identifies this build invocation within the builder's
// namespace.
func (m Metadata) InvocationID() string {
	return m.invocationID
}

// StartedOn is the time the build started.
func (m Metadata) StartedOn() time.Time {
	t, _ := time.Parse(time.RFC3339, m.startedOn)
	return t
}

// FinishedOn is the time the build finished. A build still in flight leaves
// it absent or null.
func (m Metadata) FinishedOn() Nullable[time.Time] {
	if s, ok := m.finishedOn.Get(); ok {
		t, _ := time.Parse(time.RFC3339, s)
		return valueOf(t)
	}

	return Nullable[time.Time]{state: m.finishedOn.state}
}

// MetadataOption sets one of the optional metadata fields.
type MetadataOption func(*Metadata) error

// NewMetadata builds invocation metadata. Timestamps are recorded in
// RFC 3339 form in the zone they carry.
func NewMetadata(invocationID string, startedOn time.Time, opts ...MetadataOption) (Metadata, error) {
	started, err := formatTime(startedOn)
	if err != nil {
		return Metadata{}, fmt.Errorf("startedOn: %w", err)
	}

	m := Metadata{
		invocationID: invocationID,
		startedOn:    started,
	}
	for _, opt := range opts {
		if err := opt(&m); err != nil {
			return Metadata{}, err
		}
	}

	return m, nil
}

// WithFinishedOn sets the build completion time.
func WithFinishedOn(finishedOn time.Time) MetadataOption {
	return func(m *Metadata) error {
		finished, err := formatTime(finishedOn)
		if err != nil {
			return fmt.Errorf("finishedOn: %w", err)
		}
		m.finishedOn = valueOf(finished)

		return nil
	}
}

// formatTime renders t so that it parses back under the date-time format.
// Times outside the RFC 3339 year range do not.
func formatTime(t time.Time) (string, error) {
	s := t.Format(time.RFC3339Nano)
	if err := ValidateDateTime(s); err != nil {
		return "", err
	}

	return s, nil
}

func parseMetadata(path jsonpointer.Pointer, raw json.RawMessage, c *collector) Metadata {
	obj, ok := decodeObject(path, raw, c)
	if !ok {
		return Metadata{}
	}

	m := Metadata{}
	if v, ok := obj["invocationId"]; ok {
		m.invocationID, _ = parseString(child(path, "invocationId"), v, c)
	} else {
		c.report(missingField(child(path, "invocationId")))
	}
	if v, ok := obj["startedOn"]; ok {
		m.startedOn, _ = parseFormatted(child(path, "startedOn"), v, formatDateTime, c)
	} else {
		c.report(missingField(child(path, "startedOn")))
	}
	if v, ok := obj["finishedOn"]; ok {
		m.finishedOn = parseNullableString(child(path, "finishedOn"), v, formatDateTime, c)
	}
	m.extra = remaining(obj, "invocationId", "startedOn", "finishedOn")

	return m
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.value("invocationId", m.invocationID)
	w.value("startedOn", m.startedOn)
	writeNullable(w, "finishedOn", m.finishedOn)
	w.extras(m.extra)

	return w.finish()
}
