// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errdefs defines the error kinds shared by every labmate component.
// Each failure wraps exactly one kind; callers match with errors.Is or the
// Is* helpers and never need to inspect provider-specific error bodies.
package errdefs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates a missing local file, an unknown identifier,
	// or an absent external tool.
	ErrNotFound = errors.New("not found")

	// ErrAuth indicates missing or rejected credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrRateLimited indicates the remote API refused the request with 429.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRequest indicates a request that could not be sent or was refused.
	ErrRequest = errors.New("request failed")

	// ErrParse indicates a response that could not be decoded.
	ErrParse = errors.New("unparseable response")

	// ErrFormat indicates input that is not in the expected format.
	ErrFormat = errors.New("unsupported format")
)

// Error attaches operation and provider context to a kind. errors.Is
// matches both the kind and the underlying cause.
type Error struct {
	Kind       error  // one of the package sentinels
	Op         string // failing operation, e.g. "arxiv search"
	Provider   string // remote party, e.g. "openai"; empty for local failures
	StatusCode int    // HTTP status, zero when not applicable
	Message    string // human-readable detail
	Err        error  // underlying cause
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.Error()
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Provider != "" && e.StatusCode > 0:
		fmt.Fprintf(&b, "%s API error (HTTP %d): ", e.Provider, e.StatusCode)
	case e.Provider != "":
		fmt.Fprintf(&b, "%s API error: ", e.Provider)
	}
	b.WriteString(msg)
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// New returns an Error of the given kind with a formatted message.
func New(kind error, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind carrying err as the cause.
func Wrap(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// FromStatus maps an HTTP status to an Error: 401 and 403 to ErrAuth, 404
// to ErrNotFound, 429 to ErrRateLimited, anything else to ErrRequest. The
// response body is truncated into the message.
func FromStatus(op, provider string, status int, body []byte) *Error {
	kind := ErrRequest
	switch status {
	case 401, 403:
		kind = ErrAuth
	case 404:
		kind = ErrNotFound
	case 429:
		kind = ErrRateLimited
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return &Error{Kind: kind, Op: op, Provider: provider, StatusCode: status, Message: msg}
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAuth reports whether err wraps ErrAuth.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// IsRateLimited reports whether err wraps ErrRateLimited.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsRequest reports whether err wraps ErrRequest.
func IsRequest(err error) bool { return errors.Is(err, ErrRequest) }

// IsParse reports whether err wraps ErrParse.
func IsParse(err error) bool { return errors.Is(err, ErrParse) }

// IsFormat reports whether err wraps ErrFormat.
func IsFormat(err error) bool { return errors.Is(err, ErrFormat) }
