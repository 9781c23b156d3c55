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

package attestation

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/in-toto/in-toto-golang/in_toto"
	v02 "github.com/in-toto/in-toto-golang/in_toto/slsa_provenance/v0.2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/conforma/slsa-provenance/internal/utils"
	v1 "github.com/conforma/slsa-provenance/pkg/provenance/v1"
)

// rawStatement keeps the predicate undecoded so that problems with the
// statement envelope and problems with the predicate report distinct errors.
type rawStatement struct {
	in_toto.StatementHeader
	Predicate json.RawMessage `json:"predicate"`
}

// SLSAProvenanceFromStatement parses the SLSA Provenance v1 predicate from
// the provided in-toto statement JSON.
func SLSAProvenanceFromStatement(data []byte) (Attestation, error) {
	if len(data) == 0 {
		return nil, AT001
	}

	var statement rawStatement
	if err := json.Unmarshal(data, &statement); err != nil {
		return nil, AT002.CausedBy(err)
	}

	switch statement.Type {
	case StatementInTotoV1, in_toto.StatementInTotoV01:
	default:
		return nil, AT003.CausedByF(statement.Type)
	}

	if statement.PredicateType != v1.PredicateSLSAProvenance {
		if statement.PredicateType == v02.PredicateSLSAProvenance {
			return nil, AT004.CausedByF("%s, only SLSA Provenance v1 is supported", statement.PredicateType)
		}
		return nil, AT004.CausedByF(statement.PredicateType)
	}

	if len(statement.Predicate) == 0 || bytes.Equal(statement.Predicate, []byte("null")) {
		return nil, AT002.CausedByF("No `predicate` data found")
	}

	predicate, err := v1.ParsePredicate(statement.Predicate)
	if err != nil {
		return nil, AT005.CausedBy(err)
	}

	log.Debugf("Found attestation with predicateType: %s", statement.PredicateType)

	return slsaProvenance{
		statementType: statement.Type,
		subject:       statement.Subject,
		predicate:     *predicate,
		data:          data,
	}, nil
}

// SLSAProvenanceFromFile reads an attestation statement from a file on the
// filesystem held in ctx. YAML documents are converted to JSON before
// parsing.
func SLSAProvenanceFromFile(ctx context.Context, path string) (Attestation, error) {
	data, err := afero.ReadFile(utils.FS(ctx), path)
	if err != nil {
		return nil, AT001.CausedBy(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, AT001
	}

	doc, err := utils.ToJSON(data)
	if err != nil {
		return nil, AT002.CausedBy(err)
	}

	return SLSAProvenanceFromStatement(doc)
}

type slsaProvenance struct {
	statementType string
	subject       []in_toto.Subject
	predicate     v1.Predicate
	data          []byte
}

func (a slsaProvenance) Type() string {
	return a.statementType
}

func (a slsaProvenance) PredicateType() string {
	return v1.PredicateSLSAProvenance
}

func (a slsaProvenance) Statement() []byte {
	return a.data
}

func (a slsaProvenance) Subject() []in_toto.Subject {
	return a.subject
}

func (a slsaProvenance) Predicate() v1.Predicate {
	return a.predicate
}

func (a slsaProvenance) MarshalJSON() ([]byte, error) {
	val := struct {
		Type               string `json:"type"`
		PredicateType      string `json:"predicateType"`
		PredicateBuildType string `json:"predicateBuildType"`
	}{
		Type:               a.statementType,
		PredicateType:      v1.PredicateSLSAProvenance,
		PredicateBuildType: a.predicate.BuildDefinition().BuildType(),
	}

	return json.Marshal(val)
}

// ProvenanceStatementSLSA1 is an in-toto statement with a SLSA Provenance v1
// predicate.
type ProvenanceStatementSLSA1 struct {
	in_toto.StatementHeader
	Predicate v1.Predicate `json:"predicate"`
}

// NewStatement wraps the predicate in an in-toto v1 statement about the given
// subjects.
func NewStatement(predicate v1.Predicate, subjects ...in_toto.Subject) ProvenanceStatementSLSA1 {
	return ProvenanceStatementSLSA1{
		StatementHeader: in_toto.StatementHeader{
			Type:          StatementInTotoV1,
			PredicateType: v1.PredicateSLSAProvenance,
			Subject:       subjects,
		},
		Predicate: predicate,
	}
}
