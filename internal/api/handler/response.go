package handler

import "github.com/labstack/echo/v4"

// Response is the uniform envelope every endpoint returns, on success and
// on business error alike. Data is omitted on errors.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Envelope codes.
const (
	CodeOK                 = "OK"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeDuplicateName      = "DUPLICATE_NAME"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidAdminCode   = "INVALID_ADMIN_CODE"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeNotAuthenticated   = "NOT_AUTHENTICATED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)

// OK writes a success envelope with the given HTTP status.
func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Code: CodeOK, Message: "success", Data: data})
}
