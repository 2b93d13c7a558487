// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tvdb

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is wrapped by the AuthenticationError returned when
// Search is called before a successful Authenticate.
var ErrNotAuthenticated = errors.New("client is not authenticated, call Authenticate first")

// AuthenticationError reports a failed login or a missing token.
type AuthenticationError struct {
	Msg string
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tvdb authentication failed: %s: %v", e.Msg, e.Err)
	}
	return "tvdb authentication failed: " + e.Msg
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// RequestError reports a failed search after authentication.
type RequestError struct {
	Msg string
	Err error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tvdb search failed: %s: %v", e.Msg, e.Err)
	}
	return "tvdb search failed: " + e.Msg
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ValidationError is a caller error detected before any network call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
