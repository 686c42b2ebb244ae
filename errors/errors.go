package errors

import "fmt"

var (
	// ErrNotFound covers missing, soft-deleted, and hidden-by-policy entities
	// alike, so callers cannot tell existence from visibility.
	ErrNotFound          = fmt.Errorf("resource not found")
	ErrForbidden         = fmt.Errorf("operation not allowed")
	ErrConflict          = fmt.Errorf("status transition conflict")
	ErrUnauthenticated   = fmt.Errorf("invalid or missing credentials")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrInvalidPassword   = fmt.Errorf("password does not meet complexity requirements")
)
