// Package apperr defines the error kinds surfaced by the avatar studio and
// the HTTP status each one renders as.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure. Every kind is terminal for the request or
// operation that produced it; nothing is retried.
type Kind int

const (
	Internal Kind = iota
	Configuration
	InvalidRequest
	PayloadTooLarge
	Upstream
	NoImageReturned
	PolicyBlocked
	ImageLoad
	CanvasUnsupported
)

var kindNames = map[Kind]string{
	Internal:          "Internal",
	Configuration:     "ConfigurationError",
	InvalidRequest:    "InvalidRequest",
	PayloadTooLarge:   "PayloadTooLarge",
	Upstream:          "UpstreamError",
	NoImageReturned:   "NoImageReturned",
	PolicyBlocked:     "PolicyBlocked",
	ImageLoad:         "ImageLoadError",
	CanvasUnsupported: "CanvasUnsupportedError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Status is the default HTTP status for the kind. Upstream errors carry
// their own status instead.
func (k Kind) Status() int {
	switch k {
	case Configuration, Internal, CanvasUnsupported:
		return http.StatusInternalServerError
	case InvalidRequest, PolicyBlocked:
		return http.StatusBadRequest
	case PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case NoImageReturned, Upstream:
		return http.StatusBadGateway
	case ImageLoad:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a user-facing message.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind with the kind's default status.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Status: kind.Status(), Message: msg}
}

// Wrap classifies err. The message defaults to err's text.
func Wrap(kind Kind, err error, msg string) *Error {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return &Error{Kind: kind, Status: kind.Status(), Message: msg, Err: err}
}

// UpstreamStatus builds an UpstreamError that propagates the upstream
// status code and body unchanged.
func UpstreamStatus(status int, body string) *Error {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return &Error{Kind: Upstream, Status: status, Message: body}
}

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err; unclassified errors are Internal.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return Internal
}

// StatusOf returns the HTTP status err renders as.
func StatusOf(err error) int {
	if ae, ok := As(err); ok && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if ae, ok := As(err); ok {
		return ae.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
