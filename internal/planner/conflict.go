package planner

import (
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/fsops"
)

// Digester returns the digest of a workspace file.
type Digester interface {
	Digest(rel string, info os.FileInfo) (digest.Digest, error)
}

// ObjectSet reports whether content is stored.
type ObjectSet interface {
	Has(d digest.Digest) (bool, error)
}

// ConflictChecker decides how a checkout treats an existing workspace path.
type ConflictChecker struct {
	fs       fsops.FS
	digester Digester
	cache    ObjectSet
	force    bool
}

// NewConflictChecker creates a new ConflictChecker.
func NewConflictChecker(fs fsops.FS, digester Digester, cache ObjectSet, force bool) *ConflictChecker {
	return &ConflictChecker{
		fs:       fs,
		digester: digester,
		cache:    cache,
		force:    force,
	}
}

// CheckPath inspects destPath, the workspace file of output rel that should
// have content want. It returns the operation type to apply ("" when the
// file already matches) or a conflict. A file whose current content is in
// the cache may be overwritten since it can be restored; anything else is
// only overwritten with force.
func (c *ConflictChecker) CheckPath(destPath, rel string, want digest.Digest) (string, *Conflict, error) {
	info, err := c.fs.Stat(destPath)
	if err != nil {
		if os.IsNotExist(err) {
			return OpCreate, nil, nil
		}
		return "", nil, fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	if info.IsDir() {
		if c.force {
			return OpOverwrite, nil, nil
		}
		return "", &Conflict{
			Path:     rel,
			Reason:   "Directory exists at destination",
			Existing: "directory",
			Incoming: want.String(),
		}, nil
	}

	current, err := c.digester.Digest(rel, info)
	if err != nil {
		return "", nil, err
	}
	if current == want {
		return "", nil, nil
	}

	if c.force {
		return OpOverwrite, nil, nil
	}

	cached, err := c.cache.Has(current)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check cache for %s: %w", rel, err)
	}
	if cached {
		return OpOverwrite, nil, nil
	}

	return "", &Conflict{
		Path:     rel,
		Reason:   "Workspace file was modified and its content is not cached",
		Existing: current.String(),
		Incoming: want.String(),
	}, nil
}
