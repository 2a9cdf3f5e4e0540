package domain

import "errors"

var (
	ErrDuplicateName      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAdminCode   = errors.New("admin registration code is incorrect")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrTokenInvalid       = errors.New("token invalid or expired")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
