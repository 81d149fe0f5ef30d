package action

import (
	"context"
	"errors"
	"net/http"

	"famiglia/internal/backend"
)

// Result is the envelope every server action returns. Exactly one of Data
// and Error is meaningful, determined by Success. A Result is terminal: it is
// never converted back into an error.
type Result[T any] struct {
	Success bool         `json:"success"`
	Data    T            `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail is the failure half of a Result. Field and Value are set only
// for INVALID_INPUT, so the UI can highlight the field and echo what the
// user submitted.
type ErrorDetail struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
}

// OK wraps data in a successful Result.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail converts any error reaching the action boundary into a failed Result.
// It is the single conversion point between operations that return errors and
// the envelope the UI reads; no action lets an error escape past it.
//
// Fail is a pure function of its input: calling it twice on the same error
// yields the same shape.
func Fail[T any](err error, fallback string) Result[T] {
	return Result[T]{Success: false, Error: classify(err, fallback)}
}

func classify(err error, fallback string) *ErrorDetail {
	var ae *Error
	if errors.As(err, &ae) {
		return &ErrorDetail{Code: ae.Code, Message: ae.Message, Field: ae.Field, Value: ae.Value}
	}

	var se *backend.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusUnauthorized:
			u := Unauthorized()
			return &ErrorDetail{Code: u.Code, Message: u.Message}
		case http.StatusNotFound:
			nf := EntityNotFound("요청한 리소스")
			return &ErrorDetail{Code: nf.Code, Message: nf.Message}
		}
		msg := se.Message
		if msg == "" {
			msg = fallback
		}
		return &ErrorDetail{Code: CodeUnknown, Message: msg}
	}

	var te *backend.TransportError
	if errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded) {
		nu := NetworkUnreachable()
		return &ErrorDetail{Code: nu.Code, Message: nu.Message}
	}

	return &ErrorDetail{Code: CodeUnknown, Message: fallback}
}
