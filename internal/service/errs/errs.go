package errs

import (
	"errors"
	"fmt"
)

// Domain error kinds. Callers match them with errors.Is.
var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrAuthorization          = errors.New("not authorized")
	ErrDuplicateKey           = errors.New("duplicate key")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// Validationf returns an ErrValidation carrying a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf returns an ErrNotFound carrying a formatted reason.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Authorizationf returns an ErrAuthorization carrying a formatted reason.
func Authorizationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}
