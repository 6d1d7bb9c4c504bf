package upload

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies a validation failure class. Codes are part of the
// HTTP contract: they are returned verbatim in error payloads.
type ErrorCode string

const (
	// ErrFieldNameMismatch is returned when a file part arrives under a
	// form field other than the required one.
	ErrFieldNameMismatch ErrorCode = "field_name_mismatch"
	// ErrUnsupportedMediaType is returned when a part's content type does
	// not match the declared upload purpose.
	ErrUnsupportedMediaType ErrorCode = "unsupported_media_type"
	// ErrPayloadTooLarge is returned when a file exceeds the per-file
	// ceiling or the request exceeds the aggregate ceiling.
	ErrPayloadTooLarge ErrorCode = "payload_too_large"
	// ErrTooManyFiles is returned when the request carries more files
	// than the purpose allows.
	ErrTooManyFiles ErrorCode = "too_many_files"
	// ErrEmptyUpload is returned when parsing finishes with zero
	// accepted files.
	ErrEmptyUpload ErrorCode = "empty_upload"
)

// Error is a validation error reported synchronously to the uploader.
// Validation errors are never retried.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the validation code to its response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case ErrPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
