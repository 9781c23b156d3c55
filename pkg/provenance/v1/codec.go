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
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/qri-io/jsonpointer"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/conforma/slsa-provenance/internal/utils"
)

// child extends a JSON pointer by one token.
func child(p jsonpointer.Pointer, token string) jsonpointer.Pointer {
	c := make(jsonpointer.Pointer, len(p), len(p)+1)
	copy(c, p)

	return append(c, token)
}

// decodeObject unmarshals raw into a property map, reporting a type
// violation when the value is not a JSON object.
func decodeObject(path jsonpointer.Pointer, raw json.RawMessage, c *collector) (map[string]json.RawMessage, bool) {
	if utils.JSONType(raw) != "object" {
		c.report(wrongType(path, "object", raw))
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		c.report(wrongType(path, "object", raw))
		return nil, false
	}

	return obj, true
}

// parseString reports a type violation unless raw is a JSON string.
func parseString(path jsonpointer.Pointer, raw json.RawMessage, c *collector) (string, bool) {
	if utils.JSONType(raw) != "string" {
		c.report(wrongType(path, "string", raw))
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.report(wrongType(path, "string", raw))
		return "", false
	}

	return s, true
}

// parseFormatted parses a string property and checks it against the named
// format. Format violations are reported but the string is still returned;
// once any violation is on record the overall result is discarded anyway.
func parseFormatted(path jsonpointer.Pointer, raw json.RawMessage, format string, c *collector) (string, bool) {
	s, ok := parseString(path, raw, c)
	if !ok {
		return "", false
	}
	if err := checkFormat(format, s); err != nil {
		c.report(badFormat(path, format, err))
	}

	return s, true
}

// parseNullableString handles the null and value states of an optional
// string property; the property is known to be present when this is called.
// An empty format means the string is unconstrained.
func parseNullableString(path jsonpointer.Pointer, raw json.RawMessage, format string, c *collector) Nullable[string] {
	if utils.JSONType(raw) == "null" {
		return nullOf[string]()
	}

	s, ok := parseString(path, raw, c)
	if !ok {
		return Nullable[string]{}
	}
	if format != "" {
		if err := checkFormat(format, s); err != nil {
			c.report(badFormat(path, format, err))
		}
	}

	return valueOf(s)
}

// parseDescriptorList parses an ordered sequence of resource descriptors,
// tagging violations inside an element with the element index.
func parseDescriptorList(path jsonpointer.Pointer, raw json.RawMessage, c *collector) []ResourceDescriptor {
	if utils.JSONType(raw) != "array" {
		c.report(wrongType(path, "array", raw))
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		c.report(wrongType(path, "array", raw))
		return nil
	}

	list := make([]ResourceDescriptor, 0, len(items))
	for i, item := range items {
		list = append(list, parseResourceDescriptor(child(path, strconv.Itoa(i)), item, c))
	}

	return list
}

// parseNullableDescriptorList handles tri-state descriptor sequences:
// builderDependencies and byproducts.
func parseNullableDescriptorList(path jsonpointer.Pointer, raw json.RawMessage, c *collector) Nullable[[]ResourceDescriptor] {
	if utils.JSONType(raw) == "null" {
		return nullOf[[]ResourceDescriptor]()
	}

	return valueOf(parseDescriptorList(path, raw, c))
}

// remaining returns what is left of obj once the declared properties are
// removed: the unrecognized properties, preserved for round trips.
func remaining(obj map[string]json.RawMessage, declared ...string) map[string]json.RawMessage {
	for _, name := range declared {
		delete(obj, name)
	}
	if len(obj) == 0 {
		return nil
	}

	return obj
}

// normalizeRaw clones a caller-provided JSON value, mapping nil to the JSON
// null literal and rejecting bytes that are not valid JSON.
func normalizeRaw(raw json.RawMessage) (json.RawMessage, error) {
	if raw == nil {
		return json.RawMessage(`null`), nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("not valid JSON")
	}

	return slices.Clone(raw), nil
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return json.RawMessage(`null`)
	}

	return slices.Clone(raw)
}

func optString(s *string) (string, bool) {
	if s == nil {
		return "", false
	}

	return *s, true
}

// extraProperties is the residual bag of properties beyond the declared
// schema. The schema does not forbid unknown properties, so they are kept
// and re-emitted rather than dropped.
type extraProperties struct {
	extra map[string]json.RawMessage
}

// ExtraProperties returns a copy of the unrecognized properties the document
// carried alongside the declared ones, nil when there were none.
func (p extraProperties) ExtraProperties() map[string]json.RawMessage {
	if len(p.extra) == 0 {
		return nil
	}

	out := make(map[string]json.RawMessage, len(p.extra))
	for name, value := range p.extra {
		out[name] = slices.Clone(value)
	}

	return out
}

// objectWriter emits a JSON object with a deterministic member order:
// declared properties first, in schema declaration order, then unrecognized
// properties sorted by name.
type objectWriter struct {
	buf     bytes.Buffer
	members int
	err     error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')

	return w
}

func (w *objectWriter) raw(name string, value json.RawMessage) {
	if w.err != nil {
		return
	}

	encodedName, err := json.Marshal(name)
	if err != nil {
		w.err = err
		return
	}
	if value == nil {
		value = json.RawMessage(`null`)
	}

	if w.members > 0 {
		w.buf.WriteByte(',')
	}
	w.members++
	w.buf.Write(encodedName)
	w.buf.WriteByte(':')
	w.buf.Write(value)
}

func (w *objectWriter) value(name string, v any) {
	if w.err != nil {
		return
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		w.err = err
		return
	}
	w.raw(name, encoded)
}

// marshaler emits a nested value through its own MarshalJSON, verbatim.
// Handing the value to json.Marshal instead would re-compact it, losing the
// exact bytes of any opaque content inside.
func (w *objectWriter) marshaler(name string, m json.Marshaler) {
	if w.err != nil {
		return
	}

	encoded, err := m.MarshalJSON()
	if err != nil {
		w.err = err
		return
	}
	w.raw(name, encoded)
}

// descriptorList emits a descriptor sequence element by element. A nil
// sequence comes out empty, never null.
func (w *objectWriter) descriptorList(name string, list []ResourceDescriptor) {
	if w.err != nil {
		return
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		encoded, err := list[i].MarshalJSON()
		if err != nil {
			w.err = err
			return
		}
		buf.Write(encoded)
	}
	buf.WriteByte(']')
	w.raw(name, buf.Bytes())
}

func (w *objectWriter) extras(extra map[string]json.RawMessage) {
	names := maps.Keys(extra)
	slices.Sort(names)
	for _, name := range names {
		w.raw(name, extra[name])
	}
}

func (w *objectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')

	return w.buf.Bytes(), nil
}

func writeNullable[T any](w *objectWriter, name string, n Nullable[T]) {
	switch {
	case n.Absent():
	case n.Null():
		w.raw(name, json.RawMessage(`null`))
	default:
		w.value(name, n.value)
	}
}

func writeNullableDescriptors(w *objectWriter, name string, n Nullable[[]ResourceDescriptor]) {
	switch {
	case n.Absent():
	case n.Null():
		w.raw(name, json.RawMessage(`null`))
	default:
		w.descriptorList(name, n.value)
	}
}
