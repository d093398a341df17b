package remote

import "errors"

var (
	// ErrRemoteNotFound is returned when the named remote is not configured.
	ErrRemoteNotFound = errors.New("remote not found, run 'dsync remote list'")

	// ErrUnsupportedScheme is returned when a remote URL has a scheme no
	// backend serves.
	ErrUnsupportedScheme = errors.New("unsupported remote URL scheme")

	// ErrObjectNotFound is returned when an object is not on the remote.
	ErrObjectNotFound = errors.New("object not found on remote")
)
