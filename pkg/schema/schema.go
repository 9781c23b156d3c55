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

// Package schema holds the JSON Schema rendition of the SLSA Provenance v1
// predicate. The schema checks the same constraints the typed model in
// pkg/provenance/v1 enforces; it is the right tool when a document needs to
// be judged without being loaded into the model, for instance from policy
// rules.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	log "github.com/sirupsen/logrus"

	"github.com/conforma/slsa-provenance/internal/utils"
)

// schemaURL identifies the schema resource to the compiler; it is never
// fetched.
const schemaURL = "https://conforma.dev/schemas/slsa_provenance_v1.json"

// SLSAProvenanceV1 is the compiled JSON Schema of the SLSA Provenance v1
// predicate.
var SLSAProvenanceV1 *jsonschema.Schema

//go:embed slsa_provenance_v1.json
var slsaProvenanceV1JSON string

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(schemaURL, strings.NewReader(slsaProvenanceV1JSON)); err != nil {
		panic(err)
	}
	SLSAProvenanceV1 = compiler.MustCompile(schemaURL)
}

// ValidateBytes checks a provenance predicate document against the schema.
// The document can be JSON or YAML. The returned error is the schema
// violation itself, a *jsonschema.ValidationError carrying every finding.
func ValidateBytes(data []byte) error {
	jsonData, err := utils.ToJSON(data)
	if err != nil {
		return fmt.Errorf("unable to convert the provided bytes to JSON: %w", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("unable to decode the provided bytes: %w", err)
	}

	if err := SLSAProvenanceV1.Validate(document); err != nil {
		log.Debugf("Provenance document failed schema validation: %s", err)
		return err
	}

	return nil
}
