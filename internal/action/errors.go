// Package action defines the contract every server action follows: a closed
// error taxonomy, the Result envelope returned to the UI, and resolution of
// the caller's identity and active family.
package action

import "fmt"

// Code is a stable, machine-readable error identifier. The set is closed:
// the UI special-cases UNAUTHORIZED (redirect to sign-in) and NETWORK_ERROR
// (server unreachable) and treats everything else as a generic failure.
type Code string

const (
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeFamilyNotSelected Code = "FAMILY_NOT_SELECTED"
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeEntityNotFound    Code = "ENTITY_NOT_FOUND"
	CodeNetworkError      Code = "NETWORK_ERROR"

	// CodeUnknown is assigned at the boundary to failures that carry none of
	// the codes above. Factories never produce it.
	CodeUnknown Code = "UNKNOWN"
)

// Error is the tagged error value actions fail with. Message is always safe
// to show to the end user. Field, Value and Reason are populated only for
// INVALID_INPUT.
type Error struct {
	Code    Code
	Message string
	Field   string
	Value   string
	Reason  string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Unauthorized reports the absence of a valid session.
func Unauthorized() *Error {
	return &Error{Code: CodeUnauthorized, Message: "로그인이 필요합니다"}
}

// FamilyNotSelected reports that the action requires an active family but
// none could be resolved.
func FamilyNotSelected() *Error {
	return &Error{Code: CodeFamilyNotSelected, Message: "가족이 선택되지 않았습니다"}
}

// InvalidInput reports a caller-supplied argument that failed validation.
// reason is shown to the user as-is.
func InvalidInput(field, value, reason string) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Message: reason,
		Field:   field,
		Value:   value,
		Reason:  reason,
	}
}

// EntityNotFound reports a referenced resource that does not exist. kind is
// the user-facing noun, e.g. "가족" or "초대장".
func EntityNotFound(kind string) *Error {
	return &Error{
		Code:    CodeEntityNotFound,
		Message: fmt.Sprintf("%s을(를) 찾을 수 없습니다", kind),
	}
}

// NetworkUnreachable reports that the backend could not be reached.
func NetworkUnreachable() *Error {
	return &Error{Code: CodeNetworkError, Message: "서버에 연결할 수 없습니다"}
}
