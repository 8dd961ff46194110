package api

import (
	"errors"
	"net/http"

	"gymops/internal/logger"

	"github.com/gin-gonic/gin"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidInput
	KindConflict
	KindForbidden
	KindUnauthorized
	KindPaymentFailed
)

// Error is a domain error with a stable machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func InvalidInput(code, message string) *Error {
	return &Error{Kind: KindInvalidInput, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func Unauthorized(code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

func PaymentFailed(code, message string) *Error {
	return &Error{Kind: KindPaymentFailed, Code: code, Message: message}
}

const CodeStoreFailure = "STORE_FAILURE"

func (k Kind) status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindPaymentFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// StatusOf returns the HTTP status a given error maps to.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind.status()
	}
	return http.StatusInternalServerError
}

// RespondError writes err as an ErrorResponse. Errors that are not *Error are
// treated as store failures: logged in full, reported generically.
func RespondError(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Kind.status(), ErrorResponse{Error: apiErr.Message, Code: apiErr.Code})
		return
	}

	logger.WithError(err).Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  CodeStoreFailure,
	})
}
