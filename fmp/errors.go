// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fmp

import (
	"fmt"

	"github.com/stockparfait/errors"
)

// ErrorKind classifies the errors returned by the client.
type ErrorKind int

const (
	// RateLimited means the API request quota is exhausted (HTTP 429). The
	// caller should back off and retry later.
	RateLimited ErrorKind = iota + 1
	// RequestFailed is any other non-200 HTTP status.
	RequestFailed
	// UnsupportedConversion means the response cannot be converted into the
	// requested Shape, e.g. CSV into records.
	UnsupportedConversion
	// InvalidArgument is a malformed caller argument, e.g. an empty Symbols.
	InvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case RateLimited:
		return "rate limited"
	case RequestFailed:
		return "request failed"
	case UnsupportedConversion:
		return "unsupported conversion"
	case InvalidArgument:
		return "invalid argument"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned for the classified failures. It is never wrapped by this
// package, so the caller may type-assert it directly.
type Error struct {
	Kind       ErrorKind
	StatusCode int    // HTTP status for RequestFailed, 0 otherwise
	Message    string // optional details
}

var _ error = &Error{}

func (e *Error) Error() string {
	msg := "FMP: " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind checks whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
