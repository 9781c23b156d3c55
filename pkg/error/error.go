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

package error

import (
	"fmt"
	"runtime"
)

type Error interface {
	error
	// Alike returns true if the given error has the same code and cause,
	// regardless of where it was raised.
	Alike(error) bool
	CausedBy(error) Error
	CausedByF(string, ...any) Error
}

type ecError struct {
	code       string
	message    string
	cause      string
	exitStatus int
	file       string
	line       int
}

const (
	SuccessExitStatus = iota
	ErrorExitStatus
	PolicyExitStatus
)

func NewError(code, message string, exitStatus int) Error {
	e := &ecError{
		code:       code,
		message:    message,
		exitStatus: exitStatus,
	}
	e.file, e.line = caller()

	return e
}

func (e ecError) Alike(err error) bool {
	switch other := err.(type) {
	case *ecError:
		return other != nil && e.code == other.code && e.cause == other.cause
	case ecError:
		return e.code == other.code && e.cause == other.cause
	}

	return false
}

func (e ecError) CausedBy(err error) Error {
	if err == nil {
		return nil
	}

	caused := &ecError{
		code:       e.code,
		message:    e.message,
		cause:      err.Error(),
		exitStatus: e.exitStatus,
	}
	caused.file, caused.line = caller()

	return caused
}

func (e ecError) CausedByF(format string, args ...any) Error {
	caused := &ecError{
		code:       e.code,
		message:    e.message,
		cause:      fmt.Sprintf(format, args...),
		exitStatus: e.exitStatus,
	}
	caused.file, caused.line = caller()

	return caused
}

func (e ecError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.code, e.message)
	if e.file != "" {
		msg = fmt.Sprintf("%s, at %s:%d", msg, e.file, e.line)
	}
	if e.cause != "" {
		msg = fmt.Sprintf("%s, caused by: %s", msg, e.cause)
	}

	return msg
}

// caller locates the file and line two frames up, i.e. the point where the
// error was created or given its cause.
func caller() (string, int) {
	if _, file, line, ok := runtime.Caller(2); ok {
		return file, line
	}

	return "", 0
}
