package engine

import "errors"

var (
	// ErrNoRemote indicates neither --remote nor core.remote names a remote.
	ErrNoRemote = errors.New("no remote specified, use 'dsync remote default <name>' or --remote")

	// ErrMissingInCache indicates outputs to push are not in the local cache.
	ErrMissingInCache = errors.New("missing from the local cache")

	// ErrMissingOnRemote indicates outputs to fetch are not on the remote.
	ErrMissingOnRemote = errors.New("missing on the remote")

	// ErrWorkspaceModified indicates a checkout would overwrite changes.
	ErrWorkspaceModified = errors.New("workspace files were modified, use --force to overwrite")

	// ErrOutsideRepo indicates a path resolves outside the repository.
	ErrOutsideRepo = errors.New("path is outside the repository")
)
