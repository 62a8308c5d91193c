package usecase

import "errors"

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeTransform    = "TRANSFORM_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"

	CodeUpstream = "UPSTREAM_FAILURE"
)

// DomainError is an expected, user-correctable outcome.
type DomainError struct {
	Code    string
	Message string
	Fields  FieldErrors
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps a collaborator failure.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode returns the code of a DomainError or TechnicalError, or "" otherwise.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

func notFound(msg string) error  { return &DomainError{Code: CodeNotFound, Message: msg} }
func forbidden(msg string) error { return &DomainError{Code: CodeForbidden, Message: msg} }
func conflict(msg string) error  { return &DomainError{Code: CodeConflict, Message: msg} }

func invalid(fields FieldErrors) error {
	return &DomainError{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

func upstream(msg string, err error) error {
	return &TechnicalError{Code: CodeUpstream, Message: msg, Err: err}
}
