// Package response defines the wire envelope every endpoint answers with.
// Mobile clients switch on the status field, so both shapes stay fixed:
//
//	{"status": "success", "data": ...}
//	{"status": "error", "message": "..."}
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse wraps a payload in the success envelope.
type SuccessResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// ErrorResponse carries a user-facing message in the error envelope.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success writes a success envelope with the given status code.
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{
		Status: "success",
		Data:   data,
	})
}

// Error writes an error envelope with the given status code.
func Error(c echo.Context, statusCode int, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, ErrorResponse{
		Status:  "error",
		Message: message,
	})
}

// BadRequest 400 error
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 error
func Unauthorized(c echo.Context, message string) error {
	return Error(c, http.StatusUnauthorized, message)
}

// NotFound 404 error
func NotFound(c echo.Context, message string) error {
	return Error(c, http.StatusNotFound, message)
}

// InternalServerError 500 error
func InternalServerError(c echo.Context, message string) error {
	return Error(c, http.StatusInternalServerError, message)
}
