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
	"fmt"
	"net/url"
	"time"
)

const (
	formatURI      = "uri"
	formatDateTime = "date-time"
)

// ValidateURI checks that s is a syntactically valid absolute URI, i.e. one
// that carries a scheme. The URI is not resolved or dereferenced.
func ValidateURI(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return fmt.Errorf("%q is not an absolute URI", s)
	}

	return nil
}

// ValidateDateTime checks that s is an RFC 3339 date-time, timezone offset
// or Z included. Only syntax is checked; the relation between timestamps is
// a policy concern left to consumers.
func ValidateDateTime(s string) error {
	_, err := time.Parse(time.RFC3339, s)
	return err
}

func checkFormat(format, s string) error {
	switch format {
	case formatURI:
		return ValidateURI(s)
	case formatDateTime:
		return ValidateDateTime(s)
	}

	return nil
}
