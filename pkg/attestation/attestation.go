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

// Package attestation extracts SLSA Provenance predicates from in-toto
// attestation statements.
package attestation

import (
	"github.com/in-toto/in-toto-golang/in_toto"

	e "github.com/conforma/slsa-provenance/pkg/error"
	v1 "github.com/conforma/slsa-provenance/pkg/provenance/v1"
)

var (
	AT001 = e.NewError("AT001", "No attestation found", e.ErrorExitStatus)
	AT002 = e.NewError("AT002", "Malformed attestation data", e.ErrorExitStatus)
	AT003 = e.NewError("AT003", "Unsupported attestation type", e.ErrorExitStatus)
	AT004 = e.NewError("AT004", "Unsupported attestation predicate type", e.ErrorExitStatus)
	AT005 = e.NewError("AT005", "Invalid attestation predicate", e.ErrorExitStatus)
)

// StatementInTotoV1 is the type URI of in-toto v1 statements.
const StatementInTotoV1 = "https://in-toto.io/Statement/v1"

// Attestation holds an attestation statement of a particular type along with
// the raw data it was decoded from.
type Attestation interface {
	Type() string
	PredicateType() string
	Statement() []byte
	Subject() []in_toto.Subject
	Predicate() v1.Predicate
}
