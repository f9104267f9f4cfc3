package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Usecases wrap one of these so adapters can map them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrPermission = errors.New("permission denied")
	ErrDependency = errors.New("dependency failure")
)

func Validationf(format string, args ...any) error {
	return kindf(ErrValidation, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return kindf(ErrNotFound, format, args...)
}

func Conflictf(format string, args ...any) error {
	return kindf(ErrConflict, format, args...)
}

func Permissionf(format string, args ...any) error {
	return kindf(ErrPermission, format, args...)
}

// Dependency marks err as a collaborator failure while keeping its chain.
func Dependency(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDependency) {
		return Wrap(err, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrDependency, msg, err)
}

// Kind returns the first kind found in err's chain, or nil.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrPermission, ErrDependency} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func kindf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
