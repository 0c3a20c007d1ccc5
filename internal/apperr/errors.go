// Package apperr типизированные ошибки доменного слоя и их HTTP-статусы.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code машиночитаемый код ошибки
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeUnavailable  Code = "UNAVAILABLE"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Error ошибка с кодом, сообщением для клиента и внутренней причиной
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Message == "" || e.Message == t.Message)
}

// HTTPStatus возвращает HTTP-статус для кода ошибки
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Upstream оборачивает сбой хранилища. Таймаут и отмена контекста дают
// UNAVAILABLE (клиент может повторить), остальное INTERNAL_ERROR.
func Upstream(message string, cause error) *Error {
	code := CodeInternal
	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		code = CodeUnavailable
		message = "Service temporarily unavailable"
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

// From приводит произвольную ошибку к *Error. Неизвестные ошибки
// становятся INTERNAL_ERROR без утечки деталей в сообщение.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Upstream("Internal server error", err)
}

// Ошибки доменного слоя со стабильными сообщениями
var (
	ErrNoCompany          = Validation("User has no company")
	ErrCompanyNotFound    = NotFound("Company not found")
	ErrNoCompanyForUser   = NotFound("No company found for user")
	ErrTenderNotFound     = NotFound("Tender not found")
	ErrTenderNotOwned     = NotFound("Tender not found or not owned by company")
	ErrEmailTaken         = Conflict("Email already registered")
	ErrAlreadyApplied     = Conflict("Already applied to this tender")
	ErrInvalidCredentials = Unauthorized("Invalid credentials")
	ErrAuthFailed         = Unauthorized("Authentication failed")
	ErrInvalidToken       = Unauthorized("Invalid or expired token")
	ErrMissingImage       = Validation("Missing image")
	ErrInvalidValue       = Validation("Invalid field value")
)
