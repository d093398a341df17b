package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/dsync/internal/cache"
	"github.com/danieljhkim/dsync/internal/config"
	"github.com/danieljhkim/dsync/internal/engine"
	"github.com/danieljhkim/dsync/internal/fsops"
	"github.com/danieljhkim/dsync/internal/gitx"
	"github.com/danieljhkim/dsync/internal/hash"
	"github.com/danieljhkim/dsync/internal/remote"
	"github.com/danieljhkim/dsync/internal/state"
)

// stateFileName is the workspace hash state inside .dsync/tmp.
const stateFileName = "state.json"

// ExitError carries a non-zero exit code for failures that were already
// reported, such as a batch with failed targets. main exits with Code and
// prints nothing.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// exitCode converts a batch exit code to the command's error.
func exitCode(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

// discoverRepo finds the dsync repository enclosing the working directory.
func discoverRepo() (*config.Paths, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	paths, err := config.Discover(cwd)
	if err != nil {
		return nil, "", err
	}
	return paths, cwd, nil
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() (*engine.Engine, error) {
	paths, cwd, err := discoverRepo()
	if err != nil {
		return nil, err
	}

	// Ensure directories exist
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	settings, err := config.LoadSettings(paths)
	if err != nil {
		return nil, err
	}

	// The git repository is optional; only --all-branches and --all-tags need it
	var gitRepo gitx.Repo
	if repo, err := gitx.Open(paths.Root); err == nil {
		gitRepo = repo
	} else {
		logger.Debug().Err(err).Msg("no git repository")
	}

	// Create real implementations
	fs := fsops.NewRealFS()
	store := cache.NewOS(paths.Cache)
	stateStore := state.NewFileStore(fs, filepath.Join(paths.Tmp, stateFileName), logger)
	hasher := state.NewCachedHasher(hash.NewSHA256Hasher(), stateStore, paths.Root)

	// Create engine
	return engine.New(paths, settings, store, remote.NewOpener(paths.Root), gitRepo, fs, hasher, cwd, logger), nil
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
