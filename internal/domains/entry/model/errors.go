package model

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeEntryAlreadyExists = "ENTRY_ALREADY_EXISTS"
	CodeEntryNotFound      = "ENTRY_NOT_FOUND"
	CodeInvalidEntry       = "INVALID_ENTRY"
)

// EntryError is the base error of the entry domain.
type EntryError struct {
	Code    string
	Message string
	Err     error
}

func (e *EntryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies still satisfy errors.Is against the sentinels.
func (e *EntryError) Is(target error) bool {
	var t *EntryError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// ErrDuplicateEntry - create targeted an exact title that already exists
var ErrDuplicateEntry = &EntryError{
	Code:    CodeEntryAlreadyExists,
	Message: "book already exists",
}

// ErrEntryNotFound - no stored title contains the query as a subsequence
var ErrEntryNotFound = &EntryError{
	Code:    CodeEntryNotFound,
	Message: "book does not exist",
}

// ErrInvalidEntry - input failed validation or decoding
var ErrInvalidEntry = &EntryError{
	Code:    CodeInvalidEntry,
	Message: "invalid book entry",
}

// NewValidationError wraps a validation failure; the message is what the client sees.
func NewValidationError(err error) *EntryError {
	return &EntryError{
		Code:    CodeInvalidEntry,
		Message: err.Error(),
		Err:     err,
	}
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidEntry)
}

// MapErrorToHTTP converts an error to a status code and the "detail" string.
// Duplicate and not-found both answer 400, which existing clients rely on.
func MapErrorToHTTP(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var entryErr *EntryError
	if errors.As(err, &entryErr) {
		switch entryErr.Code {
		case CodeEntryAlreadyExists, CodeEntryNotFound, CodeInvalidEntry:
			return http.StatusBadRequest, entryErr.Message
		}
	}

	return http.StatusInternalServerError, "internal server error"
}
