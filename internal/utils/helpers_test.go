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

package utils

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestToJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{
			name: "JSON input passes through",
			data: `{"name": "ec"}`,
			want: `{"name": "ec"}`,
		},
		{
			name: "JSON input with leading whitespace passes through",
			data: "\n\t {\"name\": \"ec\"}",
			want: "\n\t {\"name\": \"ec\"}",
		},
		{
			name: "YAML input is converted",
			data: "name: ec\nvalues:\n  - 1\n  - 2\n",
			want: `{"name":"ec","values":[1,2]}`,
		},
		{
			name:    "invalid YAML input",
			data:    "name: ec\n\tbad: indent",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToJSON([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestJSONType(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "object", data: `{"a": 1}`, want: "object"},
		{name: "object with leading whitespace", data: "\n  {}", want: "object"},
		{name: "array", data: `[1, 2]`, want: "array"},
		{name: "string", data: `"hi"`, want: "string"},
		{name: "number", data: `14`, want: "number"},
		{name: "negative number", data: `-0.5`, want: "number"},
		{name: "true", data: `true`, want: "boolean"},
		{name: "false", data: `false`, want: "boolean"},
		{name: "null", data: `null`, want: "null"},
		{name: "empty input", data: "", want: ""},
		{name: "whitespace only", data: "  \n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JSONType([]byte(tt.data))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := WithFS(context.Background(), fs)
	assert.Same(t, fs, FS(ctx))

	assert.IsType(t, afero.NewOsFs(), FS(context.Background()))
}
