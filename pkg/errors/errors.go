package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API error: a stable machine code, the HTTP status it maps to
// and a human message. Details carries per-field validation failures.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Code, so a clone with its own message still satisfies
// errors.Is against the sentinel it came from.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New declares an error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap declares an error caused by err.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// General purpose errors.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Ledger and review workflow errors.
var (
	ErrUploadWindowClosed   = New("UPLOAD_WINDOW_CLOSED", http.StatusConflict, "certificate uploads are closed for this department")
	ErrInvalidCategoryLevel = New("INVALID_CATEGORY_LEVEL", http.StatusBadRequest, "category level does not exist")
	ErrAlreadyProcessed     = New("ALREADY_PROCESSED", http.StatusConflict, "certificate already processed")
	ErrReviewerForbidden    = New("REVIEWER_UNAUTHORIZED", http.StatusForbidden, "reviewer is not allowed to decide this certificate")
	ErrYearAlreadyStarted   = New("YEAR_ALREADY_STARTED", http.StatusConflict, "academic year already started")
	ErrLedgerFrozen         = New("LEDGER_FROZEN", http.StatusConflict, "student ledger no longer accepts points")
)

// FromError returns the first *Error in err's chain. Anything else becomes
// an INTERNAL_ERROR wrapping err.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Status == 0 {
			withStatus := *e
			withStatus.Status = http.StatusInternalServerError
			return &withStatus
		}
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies err, replacing the message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	out := *err
	if message != "" {
		out.Message = message
	}
	return &out
}

// WithDetails copies err and attaches field details.
func WithDetails(err *Error, details map[string]string) *Error {
	if err == nil {
		return nil
	}
	out := *err
	if len(details) > 0 {
		out.Details = make(map[string]string, len(details))
		for field, reason := range details {
			out.Details[field] = reason
		}
	}
	return &out
}
