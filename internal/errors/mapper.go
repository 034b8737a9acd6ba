// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Kind classifies a failure independently of the transport that reports it.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthenticated
	KindConflict
	KindUpstream
	KindCanceled
	KindTimeout
)

// StatusClientClosedRequest is the non-standard status for a caller that went away.
const StatusClientClosedRequest = 499

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindCanceled:
		return "canceled"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error is the error type returned by the service layer.
// Message is safe to show to callers; Err keeps the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// GRPCStatus lets status.FromError understand service errors directly.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(GRPCCode(e.Kind), e.Message)
}

// InvalidArgument creates an InvalidInput error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// Unauthenticated creates an error for missing, revoked or unknown credentials.
func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// AlreadyExists creates a Conflict error.
func AlreadyExists(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Upstream wraps a dependency failure behind a generic message.
func Upstream(msg string, cause error) error {
	return &Error{Kind: KindUpstream, Message: msg, Err: cause}
}

// Map converts repo/infra errors into service errors.
// Context cancellation and deadlines win over everything else in the chain,
// so a service error wrapping them is reclassified. Other errors that already
// carry a Kind pass through untouched.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *Error
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Message: "request was canceled", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}

	case errors.As(err, &svcErr):
		return err

	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindInvalidInput, Message: "record not found", Err: err}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: "record already exists", Err: err}

	default:
		return &Error{Kind: KindInternal, Message: "internal error", Err: err}
	}
}

// KindOf reports the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return "internal error"
}

// HTTPStatus maps an error to the status code of the JSON API.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindCanceled:
		return StatusClientClosedRequest
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode maps a Kind to its gRPC status code.
func GRPCCode(k Kind) codes.Code {
	switch k {
	case KindInvalidInput:
		return codes.InvalidArgument
	case KindUnauthenticated:
		return codes.Unauthenticated
	case KindConflict:
		return codes.AlreadyExists
	case KindCanceled:
		return codes.Canceled
	case KindTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// ToStatus converts any error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(GRPCCode(KindOf(err)), Message(err))
}
