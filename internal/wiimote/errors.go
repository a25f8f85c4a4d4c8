package wiimote

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound means no Wii Remote is connected, or the requested
	// device node disappeared before it could be opened.
	ErrNotFound = errors.New("no wii remote found")

	// ErrPermissionDenied means the device node exists but cannot be
	// accessed by the current user.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDisconnected means the remote went away mid-session.
	ErrDisconnected = errors.New("wii remote disconnected")

	// ErrTimeout means no event arrived within the requested window.
	ErrTimeout = errors.New("timed out waiting for event")

	// ErrClosed means the session was closed while an operation was
	// pending or before it started.
	ErrClosed = errors.New("session closed")
)

// wrapOpenErr translates a device node open failure into the package
// error taxonomy.
func wrapOpenErr(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s (add your user to the input group, or run with sudo)", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("open %s: %w", path, err)
	}
}
