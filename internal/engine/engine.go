// Package engine provides the core business logic for dsync operations.
//
// The engine package acts as the orchestration layer between CLI commands and
// lower-level operations. It resolves targets to tracked outputs, moves
// objects between the local cache and a remote, and checks cached content
// out into the workspace. Every call handles one target; running a command
// over many targets is the job of package sync.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Fetch/Push: Bounded parallel transfers between cache and remote
//   - Pull: Fetch followed by a conflict-checked checkout
//   - Status: Workspace and cloud status reports
//   - Add: Hashing data files into the cache and writing target files
package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/dsync/internal/cache"
	"github.com/danieljhkim/dsync/internal/config"
	"github.com/danieljhkim/dsync/internal/fsops"
	"github.com/danieljhkim/dsync/internal/gitx"
	"github.com/danieljhkim/dsync/internal/remote"
	"github.com/danieljhkim/dsync/internal/state"
)

// RemoteOpener resolves a remote name to a backend.
type RemoteOpener interface {
	Open(ctx context.Context, name string, settings *config.Settings) (remote.Backend, error)
}

// Engine orchestrates all dsync operations.
// It is the main API surface called by the CLI.
type Engine struct {
	paths    *config.Paths
	settings *config.Settings
	cache    *cache.Store
	remotes  RemoteOpener
	gitRepo  gitx.Repo
	fs       fsops.FS
	hasher   *state.CachedHasher
	cwd      string
	log      zerolog.Logger
}

// New creates a new Engine with the given dependencies. gitRepo may be nil
// when the workspace is not inside a git repository; cwd anchors relative
// targets.
func New(
	paths *config.Paths,
	settings *config.Settings,
	store *cache.Store,
	remotes RemoteOpener,
	gitRepo gitx.Repo,
	fs fsops.FS,
	hasher *state.CachedHasher,
	cwd string,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		paths:    paths,
		settings: settings,
		cache:    store,
		remotes:  remotes,
		gitRepo:  gitRepo,
		fs:       fs,
		hasher:   hasher,
		cwd:      cwd,
		log:      log,
	}
}

// jobs returns the transfer parallelism for a call.
func (e *Engine) jobs(requested int) int {
	if requested > 0 {
		return requested
	}
	if e.settings.Core.Jobs > 0 {
		return e.settings.Core.Jobs
	}
	return 4 * runtime.NumCPU()
}

// openRemote opens the requested remote, falling back to core.remote.
func (e *Engine) openRemote(ctx context.Context, name string) (remote.Backend, error) {
	if name == "" {
		name = e.settings.Core.Remote
	}
	if name == "" {
		return nil, ErrNoRemote
	}

	backend, err := e.remotes.Open(ctx, name, e.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote: %w", err)
	}
	return backend, nil
}
