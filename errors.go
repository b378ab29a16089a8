package nufs

import (
	"syscall"

	"github.com/nakulcr7/nufs/internal/store"
)

// Every failure kind this package returns maps to one of these syscall.Errno
// sentinels (spec.md §7). Callers match them with errors.Is, the same way
// dargueta-disko's consumers match its errors package:
//
//	if errors.Is(err, nufs.ErrNotFound) { ... }
var (
	ErrNotFound         = store.ErrNotFound
	ErrNotADirectory    = store.ErrNotADirectory
	ErrNotEmpty         = store.ErrNotEmpty
	ErrNameTooLong      = store.ErrNameTooLong
	ErrNoSpace          = store.ErrNoSpace
	ErrPermissionDenied = store.ErrPermissionDenied
)

// DriverError is the concrete error type every Fs operation returns on
// failure (Mount and Unmount instead return the wrapped OS error from
// opening, mapping, or syncing the image). Its Unwrap method exposes the underlying
// syscall.Errno, so errors.Is against the sentinels above always works
// whether or not the caller has a *DriverError in hand.
type DriverError = store.DriverError

// AsErrno extracts the syscall.Errno carried by err, for callers (such as a
// FUSE adapter) that must hand a bare errno back to their own caller rather
// than a Go error value.
func AsErrno(err error) (syscall.Errno, bool) {
	de, ok := err.(*store.DriverError)
	if !ok {
		return 0, false
	}
	return de.Errno, true
}
