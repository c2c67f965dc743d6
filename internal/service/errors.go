package service

import "errors"

var (
	// ErrNotFound maps to HTTP 404 at the controller layer.
	ErrNotFound = errors.New("resource not found")

	// ErrNotAuthorized maps to HTTP 403; the resource exists but
	// belongs to another user.
	ErrNotAuthorized = errors.New("not authorized to access this resource")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
