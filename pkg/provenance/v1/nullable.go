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

// Nullable holds a property that the schema allows to be absent from the
// document, present as an explicit JSON null, or present with a value. The
// three states are distinct and survive a round trip. The zero value is the
// absent state.
type Nullable[T any] struct {
	state nullState
	value T
}

type nullState int

const (
	stateAbsent nullState = iota
	stateNull
	stateValue
)

// Absent returns true if the property was not in the document at all.
func (n Nullable[T]) Absent() bool {
	return n.state == stateAbsent
}

// Null returns true if the property was an explicit JSON null.
func (n Nullable[T]) Null() bool {
	return n.state == stateNull
}

// Get returns the property value; ok is false in the absent and null states.
func (n Nullable[T]) Get() (T, bool) {
	return n.value, n.state == stateValue
}

func nullOf[T any]() Nullable[T] {
	return Nullable[T]{state: stateNull}
}

func valueOf[T any](v T) Nullable[T] {
	return Nullable[T]{state: stateValue, value: v}
}
