// Package apperr classifies failures so handlers can map them to HTTP statuses
// without string matching on error messages.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the coarse failure class of an error.
type Kind int

const (
	// Internal is anything not otherwise classified.
	Internal Kind = iota
	// Validation means the caller sent something unusable.
	Validation
	// NotFound means the requested data does not exist (yet).
	NotFound
	// UpstreamTimeout means an LLM, search or feed call ran out of time.
	UpstreamTimeout
	// UpstreamFailure means an LLM, search or feed call failed.
	UpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case UpstreamTimeout:
		return "upstream_timeout"
	case UpstreamFailure:
		return "upstream_failure"
	default:
		return "internal"
	}
}

// Error attaches a Kind to a wrapped error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with kind. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Classify returns the kind of err. Deadline errors count as UpstreamTimeout
// even when nobody wrapped them.
func Classify(err error) Kind {
	if err == nil {
		return Internal
	}
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind == UpstreamFailure && errors.Is(ae.Err, context.DeadlineExceeded) {
			return UpstreamTimeout
		}
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return UpstreamTimeout
	}
	return Internal
}

// HTTPStatus maps err to a status code. Internal errors use fallback.
func HTTPStatus(err error, fallback int) int {
	switch Classify(err) {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case UpstreamTimeout:
		return http.StatusGatewayTimeout
	case UpstreamFailure:
		return http.StatusBadGateway
	default:
		return fallback
	}
}
