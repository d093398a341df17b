// Package config manages dsync repository paths and settings.
//
// A dsync repository is any directory containing a .dsync/ directory. It
// holds the content-addressable cache, scratch state and the config.toml
// settings file. The cache location can be moved with DSYNC_CACHE_DIR.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the per-repository metadata directory.
	DirName = ".dsync"

	// ConfigFileName is the settings file inside DirName.
	ConfigFileName = "config.toml"

	// TargetExt is the extension of target files.
	TargetExt = ".dsync"
)

// ErrNotInitialized is returned when no .dsync directory is found.
var ErrNotInitialized = errors.New("not a dsync repository (or any of the parent directories), run 'dsync init'")

// Paths contains all the filesystem paths used by a dsync repository.
type Paths struct {
	// Root is the workspace root containing .dsync
	Root string

	// Meta is the .dsync directory
	Meta string

	// Cache is the content-addressable object cache
	Cache string

	// Tmp holds scratch state such as the workspace hash state
	Tmp string

	// Config is the settings file
	Config string
}

// RepoPaths returns the paths of the repository rooted at root.
// DSYNC_CACHE_DIR overrides the cache location.
func RepoPaths(root string) *Paths {
	meta := filepath.Join(root, DirName)
	cache := os.Getenv("DSYNC_CACHE_DIR")
	if cache == "" {
		cache = filepath.Join(meta, "cache")
	}

	return &Paths{
		Root:   root,
		Meta:   meta,
		Cache:  cache,
		Tmp:    filepath.Join(meta, "tmp"),
		Config: filepath.Join(meta, ConfigFileName),
	}
}

// Discover walks up from cwd looking for a .dsync directory.
func Discover(cwd string) (*Paths, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	for {
		if info, err := os.Stat(filepath.Join(current, DirName)); err == nil && info.IsDir() {
			return RepoPaths(current), nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, ErrNotInitialized
		}
		current = parent
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Meta, p.Cache, p.Tmp} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Abs returns the absolute path of a repository-relative slash path.
func (p *Paths) Abs(rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}
