package errors

import "fmt"

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeUpstreamUnavailable ErrCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUnparseableDate     ErrCode = "UNPARSEABLE_DATE"
	ErrCodeEmptyInput          ErrCode = "EMPTY_INPUT"
	ErrCodeMalformedRecord     ErrCode = "MALFORMED_RECORD"
	ErrCodeNotFound            ErrCode = "NOT_FOUND"
	ErrCodeBadRequest          ErrCode = "BAD_REQUEST"
	ErrCodeInternal            ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an error for a failed fetch against the
// upstream hosting API. Not retried; surfaced to the caller as is.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpstreamUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewUnparseableDateError creates an error for a date value matching no
// recognized date grammar.
func NewUnparseableDateError(value string) *AppError {
	return &AppError{
		Code:    ErrCodeUnparseableDate,
		Message: fmt.Sprintf("date %q matches no recognized format", value),
	}
}

// NewEmptyInputError creates an error for an aggregation requested over
// zero qualifying rows.
func NewEmptyInputError(what string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyInput,
		Message: fmt.Sprintf("no %s to aggregate", what),
	}
}

// NewMalformedRecordError creates an error for a raw record missing a
// required identity field.
func NewMalformedRecordError(kind, detail string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedRecord,
		Message: fmt.Sprintf("malformed raw %s: %s", kind, detail),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// IsUnparseableDate checks if the error is an unparseable date error
func IsUnparseableDate(err error) bool {
	return hasCode(err, ErrCodeUnparseableDate)
}

// IsEmptyInput checks if the error is an empty aggregation input error
func IsEmptyInput(err error) bool {
	return hasCode(err, ErrCodeEmptyInput)
}

// IsMalformedRecord checks if the error is a malformed record error
func IsMalformedRecord(err error) bool {
	return hasCode(err, ErrCodeMalformedRecord)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func hasCode(err error, code ErrCode) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Code == code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
