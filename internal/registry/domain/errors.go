package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthRequired       = errors.New("authentication required")
	ErrPermissionDenied   = errors.New("insufficient permissions")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
)
