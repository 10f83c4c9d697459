package apperrors

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrAuthenticationRequired: không có phiên đăng nhập, client cần chuyển về /login.
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
)

// Denied gắn thông điệp cụ thể vào ErrAuthorizationDenied.
func Denied(msg string) error {
	return &wrapped{msg: msg, kind: ErrAuthorizationDenied}
}

// NotFound trả lỗi ErrNotFound cho entity.
func NotFound(entity string) error {
	return &wrapped{msg: entity + " not found", kind: ErrNotFound}
}

func Conflict(msg string) error {
	return &wrapped{msg: msg, kind: ErrConflict}
}

type wrapped struct {
	msg  string
	kind error
}

func (e *wrapped) Error() string { return e.msg }
func (e *wrapped) Unwrap() error { return e.kind }

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation failed"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func Validation(msg string, fields ...FieldError) error {
	return &ValidationError{Err: errors.New(msg), Fields: fields}
}

// Invalid bọc một lỗi có sẵn thành ValidationError.
func Invalid(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

// FromBinding chuyển lỗi binding của gin/validator thành ValidationError.
func FromBinding(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Err: fmt.Errorf("invalid input: %w", err)}
	}
	fields := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Tag()})
	}
	return &ValidationError{Err: errors.New("invalid input"), Fields: fields}
}

// BackendError: thao tác datastore hoặc storage thất bại. Không retry.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }

func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
