package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
)

// Kind classifies a failure into the taxonomy surfaced to stores and UI code.
type Kind string

const (
	KindBadRequest      Kind = "bad_request"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindTooManyRequests Kind = "too_many_requests"
	KindServer          Kind = "server_error"
	KindNetwork         Kind = "network_error"
	KindTimeout         Kind = "timeout_error"
	KindConfiguration   Kind = "configuration_error"
)

// Error is a typed API error with HTTP awareness. Status is zero for
// local failures (network, timeout, configuration).
type Error struct {
	Kind    Kind   `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
	Op      string `json:"op,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes two errors of the same Kind match under errors.Is, so callers can
// compare against the predefined sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Predefined errors for common scenarios.
var (
	ErrBadRequest      = New(KindBadRequest, http.StatusBadRequest, "invalid request")
	ErrUnauthorized    = New(KindUnauthorized, http.StatusUnauthorized, "unauthorized")
	ErrForbidden       = New(KindForbidden, http.StatusForbidden, "access forbidden")
	ErrNotFound        = New(KindNotFound, http.StatusNotFound, "resource not found")
	ErrConflict        = New(KindConflict, http.StatusConflict, "a conflict occurred on the server")
	ErrTooManyRequests = New(KindTooManyRequests, http.StatusTooManyRequests, "too many requests")
	ErrServer          = New(KindServer, http.StatusInternalServerError, "internal server error")
	ErrNetwork         = New(KindNetwork, 0, "network error, please check your connection")
	ErrTimeout         = New(KindTimeout, 0, "request timed out, please try again")
)

// Configuration reports local misuse: an operation invoked on a store or
// service before its client dependency was assigned.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// FromStatus maps an HTTP status code into the taxonomy. Unrecognized codes
// normalize to KindServer while keeping the original status for inspection.
func FromStatus(status int, message, op string) *Error {
	kind := KindServer
	switch status {
	case http.StatusBadRequest:
		kind = KindBadRequest
	case http.StatusUnauthorized:
		kind = KindUnauthorized
	case http.StatusForbidden:
		kind = KindForbidden
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusConflict:
		kind = KindConflict
	case http.StatusTooManyRequests:
		kind = KindTooManyRequests
	}
	if message == "" {
		message = defaultMessage(kind)
	}
	return &Error{Kind: kind, Status: status, Message: message, Op: op}
}

func defaultMessage(kind Kind) string {
	switch kind {
	case KindBadRequest:
		return ErrBadRequest.Message
	case KindUnauthorized:
		return ErrUnauthorized.Message
	case KindForbidden:
		return ErrForbidden.Message
	case KindNotFound:
		return ErrNotFound.Message
	case KindConflict:
		return ErrConflict.Message
	case KindTooManyRequests:
		return ErrTooManyRequests.Message
	default:
		return ErrServer.Message
	}
}

// Normalize maps any transport-layer failure into the taxonomy. Errors that
// are already typed pass through; context deadline and URL timeouts become
// KindTimeout and everything else that never produced a response becomes
// KindNetwork.
func Normalize(err error, op string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" && op != "" {
			clone := *e
			clone.Op = op
			return &clone
		}
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: ErrTimeout.Message, Op: op, Err: err}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return &Error{Kind: KindTimeout, Message: ErrTimeout.Message, Op: op, Err: err}
		}
		return &Error{Kind: KindNetwork, Message: ErrNetwork.Message, Op: op, Err: err}
	}
	return &Error{Kind: KindServer, Message: err.Error(), Op: op, Err: err}
}

// KindOf returns the Kind of a normalized error, or KindServer for any
// untyped error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// StatusOf returns the raw HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsMethodNotAllowed reports whether err carries a 405 status. Bulk
// operations treat 404/405 as feature absence rather than failure.
func IsMethodNotAllowed(err error) bool {
	return StatusOf(err) == http.StatusMethodNotAllowed
}

// IsConfiguration reports whether err is a local misuse error.
func IsConfiguration(err error) bool {
	return KindOf(err) == KindConfiguration
}
