package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolveToRepoRelative resolves a user-provided path (absolute, relative, or containing "..")
// to a clean repo-root-relative slash path. It rejects paths that escape the repo boundary.
// The repo root itself resolves to ".".
func resolveToRepoRelative(userPath, cwd, repoRoot string) (string, error) {
	var absPath string
	if filepath.IsAbs(userPath) {
		absPath = userPath
	} else {
		absPath = filepath.Join(cwd, userPath)
	}
	absPath = filepath.Clean(absPath)

	repoRoot = filepath.Clean(repoRoot)

	relPath, err := filepath.Rel(repoRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("failed to compute repo-relative path for %q: %w", userPath, err)
	}

	// Reject paths outside the repo
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves to %q", ErrOutsideRepo, userPath, absPath)
	}

	return filepath.ToSlash(relPath), nil
}

// resolveTarget maps a command-line target to the form the resolver takes.
// The empty target selects everything and is passed through.
func (e *Engine) resolveTarget(target string) (string, error) {
	if target == "" {
		return "", nil
	}
	return resolveToRepoRelative(target, e.cwd, e.paths.Root)
}
