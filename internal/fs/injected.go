package fs

import (
	"errors"
	iofs "io/fs"
	"syscall"
)

// InjectedError marks an error as intentionally injected by [Chaos].
//
// It wraps a *fs.PathError carrying a syscall.Errno, so errors.Is checks
// against [iofs.ErrPermission] or syscall.EROFS behave as for real OS errors.
type InjectedError struct {
	Err error
}

// Error returns the underlying error's message.
func (e *InjectedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by [Chaos].
// Returns false if err is nil.
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

func injectedPathError(op, path string, errno syscall.Errno) error {
	return &InjectedError{Err: &iofs.PathError{Op: op, Path: path, Err: errno}}
}
