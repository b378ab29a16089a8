package store

import (
	"fmt"
	"syscall"
)

// Error kinds surfaced by the operation surface, mapped onto the POSIX
// errno values a host driver expects back from a filesystem callback
// (spec.md §7).
var (
	ErrNotFound         = syscall.ENOENT
	ErrNotADirectory    = syscall.ENOTDIR
	ErrNotEmpty         = syscall.ENOTEMPTY
	ErrNameTooLong      = syscall.ENAMETOOLONG
	ErrNoSpace          = syscall.ENOSPC
	ErrPermissionDenied = syscall.EACCES
)

// DriverError is a wrapper around a POSIX errno code with an optional
// human-readable message attached. It unwraps to the underlying errno so
// callers can use errors.Is(err, syscall.ENOENT) and friends. Lifted
// directly from dargueta-disko/errors.go.
type DriverError struct {
	Errno   syscall.Errno
	message string
}

func (e *DriverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.Errno.Error()
}

func (e *DriverError) Unwrap() error {
	return e.Errno
}

// NewDriverError creates a DriverError whose message is the errno's default
// description.
func NewDriverError(errno syscall.Errno) *DriverError {
	return &DriverError{Errno: errno, message: errno.Error()}
}

// NewDriverErrorWithMessage creates a DriverError with a custom message,
// prefixed with the errno's description.
func NewDriverErrorWithMessage(errno syscall.Errno, message string) *DriverError {
	return &DriverError{Errno: errno, message: fmt.Sprintf("%s: %s", errno.Error(), message)}
}
