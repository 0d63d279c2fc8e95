package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers and for HTTP status mapping
type Code string

const (
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeNotFound              Code = "NOT_FOUND"
	CodeForbidden             Code = "FORBIDDEN"
	CodeAlreadyFinalized      Code = "ALREADY_FINALIZED"
	CodeOverrideNotAllowed    Code = "OVERRIDE_NOT_ALLOWED"
	CodeNoDefaultApprover     Code = "NO_DEFAULT_APPROVER"
	CodeNoRoleMembers         Code = "NO_ROLE_MEMBERS"
	CodeAmbiguousRoleApprover Code = "AMBIGUOUS_ROLE_APPROVER"
	CodeApproverNotInRole     Code = "APPROVER_NOT_IN_ROLE"
	CodeInsufficientStock     Code = "INSUFFICIENT_STOCK"
	CodeInternal              Code = "INTERNAL"
)

// Error is a coded application error. Message is safe to show to API clients.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so errors.Is(err, apperror.ErrNotFound) works
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code && t.Message == ""
	}
	return false
}

// New creates a coded error
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Sentinels for errors.Is comparisons. They carry no message.
var (
	ErrValidation            = &Error{Code: CodeValidation}
	ErrNotFound              = &Error{Code: CodeNotFound}
	ErrForbidden             = &Error{Code: CodeForbidden}
	ErrAlreadyFinalized      = &Error{Code: CodeAlreadyFinalized}
	ErrOverrideNotAllowed    = &Error{Code: CodeOverrideNotAllowed}
	ErrNoDefaultApprover     = &Error{Code: CodeNoDefaultApprover}
	ErrNoRoleMembers         = &Error{Code: CodeNoRoleMembers}
	ErrAmbiguousRoleApprover = &Error{Code: CodeAmbiguousRoleApprover}
	ErrApproverNotInRole     = &Error{Code: CodeApproverNotInRole}
	ErrInsufficientStock     = &Error{Code: CodeInsufficientStock}
)

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status code handlers answer with
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeAlreadyFinalized:
		return http.StatusConflict
	case CodeOverrideNotAllowed, CodeNoDefaultApprover, CodeNoRoleMembers,
		CodeAmbiguousRoleApprover, CodeApproverNotInRole, CodeInsufficientStock:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
