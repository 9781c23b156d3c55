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

//go:build unit

package schema

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var valid = []byte(`{
  "buildDefinition": {
    "buildType": "https://example.com/build/v1",
    "externalParameters": {
      "ref": "refs/heads/main"
    },
    "internalParameters": {},
    "resolvedDependencies": [
      {
        "uri": "git+https://github.com/example/app@refs/heads/main",
        "digest": {
          "gitCommit": "c27d339ee6075c1f744c5d4b200f7901aad2c369"
        }
      }
    ]
  },
  "runDetails": {
    "builder": {
      "id": "https://example.com/builder",
      "version": "2.319.1"
    },
    "metadata": {
      "invocationId": "run-42",
      "startedOn": "2024-09-12T14:59:02Z",
      "finishedOn": "2024-09-12T15:02:12Z"
    },
    "byproducts": [
      {
        "uri": "file:///tmp/build.log"
      }
    ]
  }
}`)

// probe is one merge patch applied to the valid document. A patched document
// is expected to produce a violation at the `at` instance location, or to
// stay valid when `at` is unset and ok is true. Patching a member to null
// removes it, per RFC 7386.
type probe struct {
	patch string
	at    string
	ok    bool
}

func violationLocations(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		return []string{err.InstanceLocation}
	}

	var locations []string
	for _, cause := range err.Causes {
		locations = append(locations, violationLocations(cause)...)
	}

	return locations
}

func check(t *testing.T, probes ...probe) {
	t.Helper()

	for i, p := range probes {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			doc, err := jsonpatch.MergePatch(valid, []byte(p.patch))
			require.NoError(t, err)

			err = ValidateBytes(doc)
			if p.ok {
				assert.NoError(t, err)
				return
			}

			var verr *jsonschema.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, violationLocations(verr), p.at)
		})
	}
}

func TestValidDocument(t *testing.T) {
	require.NotNil(t, SLSAProvenanceV1)
	assert.NoError(t, ValidateBytes(valid))
}

func TestPredicateMembers(t *testing.T) {
	check(t,
		probe{patch: `{"buildDefinition": null}`, at: ""},
		probe{patch: `{"runDetails": null}`, at: ""},
		probe{patch: `{"somethingUnrecognized": {"kept": true}}`, ok: true},
	)
}

func TestBuildType(t *testing.T) {
	check(t,
		probe{patch: `{"buildDefinition": {"buildType": null}}`, at: "/buildDefinition"},
		probe{patch: `{"buildDefinition": {"buildType": ""}}`, at: "/buildDefinition/buildType"},
		probe{patch: `{"buildDefinition": {"buildType": "not_uri"}}`, at: "/buildDefinition/buildType"},
		probe{patch: `{"buildDefinition": {"buildType": 1}}`, at: "/buildDefinition/buildType"},
		probe{patch: `{"buildDefinition": {"buildType": "scheme:authority"}}`, ok: true},
	)
}

func TestBuildParameters(t *testing.T) {
	check(t,
		probe{patch: `{"buildDefinition": {"externalParameters": null}}`, at: "/buildDefinition"},
		probe{patch: `{"buildDefinition": {"internalParameters": null}}`, at: "/buildDefinition"},
		probe{patch: `{"buildDefinition": {"externalParameters": 1}}`, ok: true},
		probe{patch: `{"buildDefinition": {"externalParameters": [1, 2]}}`, ok: true},
		probe{patch: `{"buildDefinition": {"internalParameters": "text"}}`, ok: true},
	)
}

func TestResolvedDependencies(t *testing.T) {
	check(t,
		probe{patch: `{"buildDefinition": {"resolvedDependencies": null}}`, at: "/buildDefinition"},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": 1}}`, at: "/buildDefinition/resolvedDependencies"},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": []}}`, ok: true},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{}]}}`, at: "/buildDefinition/resolvedDependencies/0"},
	)
}

func TestResourceDescriptor(t *testing.T) {
	check(t,
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": ""}]}}`, at: "/buildDefinition/resolvedDependencies/0/uri"},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "not_uri"}]}}`, at: "/buildDefinition/resolvedDependencies/0/uri"},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "scheme:authority"}]}}`, ok: true},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "https://example.com/dep", "name": 1}]}}`, at: "/buildDefinition/resolvedDependencies/0/name"},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "https://example.com/dep", "downloadLocation": "not_uri"}]}}`, at: "/buildDefinition/resolvedDependencies/0/downloadLocation"},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "https://example.com/dep", "digest": "text"}]}}`, at: "/buildDefinition/resolvedDependencies/0/digest"},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "https://example.com/dep", "digest": {"sha256": 1}}]}}`, at: "/buildDefinition/resolvedDependencies/0/digest/sha256"},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "https://example.com/dep", "digest": {"sha256": "abc"}}]}}`, ok: true},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "https://example.com/dep", "annotations": 1}]}}`, ok: true},
		probe{patch: `{"buildDefinition": {"resolvedDependencies": [{"uri": "https://example.com/dep", "license": "Apache-2.0"}]}}`, ok: true},
	)
}

func TestBuilderId(t *testing.T) {
	check(t,
		probe{patch: `{"runDetails": {"builder": {"id": null}}}`, at: "/runDetails/builder"},
		probe{patch: `{"runDetails": {"builder": {"id": ""}}}`, at: "/runDetails/builder/id"},
		probe{patch: `{"runDetails": {"builder": {"id": "not_uri"}}}`, at: "/runDetails/builder/id"},
		probe{patch: `{"runDetails": {"builder": {"id": "scheme:authority"}}}`, ok: true},
	)
}

func TestBuilderVersion(t *testing.T) {
	check(t,
		probe{patch: `{"runDetails": {"builder": {"version": null}}}`, ok: true},
		probe{patch: `{"runDetails": {"builder": {"version": 1}}}`, at: "/runDetails/builder/version"},
		probe{patch: `{"runDetails": {"builder": {"version": "2.319.1"}}}`, ok: true},
	)
}

func TestBuilderDependencies(t *testing.T) {
	check(t,
		probe{patch: `{"runDetails": {"builder": {"builderDependencies": null}}}`, ok: true},
		probe{patch: `{"runDetails": {"builder": {"builderDependencies": 1}}}`, at: "/runDetails/builder/builderDependencies"},
		probe{patch: `{"runDetails": {"builder": {"builderDependencies": []}}}`, ok: true},
		probe{patch: `{"runDetails": {"builder": {"builderDependencies": [{"name": "no uri"}]}}}`, at: "/runDetails/builder/builderDependencies/0"},
	)
}

func TestMetadataInvocationId(t *testing.T) {
	check(t,
		probe{patch: `{"runDetails": {"metadata": {"invocationId": null}}}`, at: "/runDetails/metadata"},
		probe{patch: `{"runDetails": {"metadata": {"invocationId": ""}}}`, ok: true},
		probe{patch: `{"runDetails": {"metadata": {"invocationId": 1}}}`, at: "/runDetails/metadata/invocationId"},
	)
}

func TestMetadataStartedOn(t *testing.T) {
	check(t,
		probe{patch: `{"runDetails": {"metadata": {"startedOn": null}}}`, at: "/runDetails/metadata"},
		probe{patch: `{"runDetails": {"metadata": {"startedOn": ""}}}`, at: "/runDetails/metadata/startedOn"},
		probe{patch: `{"runDetails": {"metadata": {"startedOn": 1}}}`, at: "/runDetails/metadata/startedOn"},
		probe{patch: `{"runDetails": {"metadata": {"startedOn": "2024-13-40"}}}`, at: "/runDetails/metadata/startedOn"},
		probe{patch: `{"runDetails": {"metadata": {"startedOn": "1937-01-01T12:00:27.87+00:20"}}}`, ok: true},
		probe{patch: `{"runDetails": {"metadata": {"startedOn": "1985-04-12T23:20:50.52Z"}}}`, ok: true},
	)
}

func TestMetadataFinishedOn(t *testing.T) {
	check(t,
		probe{patch: `{"runDetails": {"metadata": {"finishedOn": null}}}`, ok: true},
		probe{patch: `{"runDetails": {"metadata": {"finishedOn": ""}}}`, at: "/runDetails/metadata/finishedOn"},
		probe{patch: `{"runDetails": {"metadata": {"finishedOn": 1}}}`, at: "/runDetails/metadata/finishedOn"},
		probe{patch: `{"runDetails": {"metadata": {"finishedOn": "1985-04-12T23:20:50.52Z"}}}`, ok: true},
	)
}

func TestByproducts(t *testing.T) {
	check(t,
		probe{patch: `{"runDetails": {"byproducts": null}}`, ok: true},
		probe{patch: `{"runDetails": {"byproducts": 1}}`, at: "/runDetails/byproducts"},
		probe{patch: `{"runDetails": {"byproducts": []}}`, ok: true},
		probe{patch: `{"runDetails": {"byproducts": [{}]}}`, at: "/runDetails/byproducts/0"},
	)
}

func TestNullsWhereAllowed(t *testing.T) {
	// merge patches cannot set a member to null, so these come verbatim
	doc := []byte(`{
	  "buildDefinition": {
	    "buildType": "https://example.com/build/v1",
	    "externalParameters": null,
	    "internalParameters": null,
	    "resolvedDependencies": [
	      {"uri": "https://example.com/dep", "digest": null, "annotations": null}
	    ]
	  },
	  "runDetails": {
	    "builder": {
	      "id": "https://example.com/builder",
	      "version": null,
	      "builderDependencies": null
	    },
	    "metadata": {
	      "invocationId": "run-42",
	      "startedOn": "2024-09-12T14:59:02Z",
	      "finishedOn": null
	    },
	    "byproducts": null
	  }
	}`)

	assert.NoError(t, ValidateBytes(doc))
}

func TestYAMLDocument(t *testing.T) {
	doc := []byte(`---
buildDefinition:
  buildType: https://example.com/build/v1
  externalParameters:
    ref: refs/heads/main
  internalParameters: {}
  resolvedDependencies: []
runDetails:
  builder:
    id: https://example.com/builder
  metadata:
    invocationId: run-42
    startedOn: "2024-09-12T14:59:02Z"
`)

	assert.NoError(t, ValidateBytes(doc))
}

func TestUndecodableDocument(t *testing.T) {
	err := ValidateBytes([]byte(`{"buildDefinition":`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "unable to decode")
}

func TestExamples(t *testing.T) {
	err := fs.WalkDir(os.DirFS("."), "examples", func(path string, d fs.DirEntry, err error) error {
		if err != nil || !strings.HasSuffix(path, ".json") {
			return err
		}

		t.Run(path, func(t *testing.T) {
			doc, err := os.ReadFile(path)
			require.NoError(t, err)

			verr := ValidateBytes(doc)
			if strings.HasSuffix(path, "_valid.json") {
				assert.NoError(t, verr)
			} else {
				assert.Error(t, verr)
			}
		})

		return nil
	})

	assert.NoError(t, err)
}
