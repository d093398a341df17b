//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"

	"github.com/danieljhkim/dsync/internal/cache"
	"github.com/danieljhkim/dsync/internal/config"
	"github.com/danieljhkim/dsync/internal/engine"
	"github.com/danieljhkim/dsync/internal/fsops"
	"github.com/danieljhkim/dsync/internal/gitx"
	"github.com/danieljhkim/dsync/internal/hash"
	"github.com/danieljhkim/dsync/internal/logging"
	"github.com/danieljhkim/dsync/internal/remote"
	"github.com/danieljhkim/dsync/internal/state"
	"github.com/danieljhkim/dsync/internal/sync"
)

// testRepo is a dsync repository wired with the same real components the
// CLI uses: the on-disk cache, the state file and the remote opener.
type testRepo struct {
	root   string
	paths  *config.Paths
	engine *engine.Engine
	log    zerolog.Logger
	logs   *bytes.Buffer
	git    *git.Repository
}

// newTestRepo creates a repository whose default remote "storage" points
// at remoteURL. withGit also makes it a git repository.
func newTestRepo(t *testing.T, remoteURL string, withGit bool) *testRepo {
	t.Helper()
	t.Setenv("DSYNC_CACHE_DIR", "")

	root := t.TempDir()
	paths := config.RepoPaths(root)
	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	fs := fsops.NewRealFS()
	if err := config.SaveSettings(fs, paths, &config.Settings{
		Core: config.CoreSettings{Remote: "storage"},
		Remotes: map[string]config.RemoteSettings{
			"storage": {URL: remoteURL},
		},
	}); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	settings, err := config.LoadSettings(paths)
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}

	r := &testRepo{root: root, paths: paths, logs: &bytes.Buffer{}}

	var gitRepo gitx.Repo
	if withGit {
		if r.git, err = git.PlainInit(root, false); err != nil {
			t.Fatalf("git init: %v", err)
		}
		repo, err := gitx.Open(root)
		if err != nil {
			t.Fatalf("failed to open git repository: %v", err)
		}
		gitRepo = repo
	}

	r.log, _ = logging.New(logging.Options{Out: r.logs, NoColor: true})

	stateStore := state.NewFileStore(fs, filepath.Join(paths.Tmp, "state.json"), r.log)
	hasher := state.NewCachedHasher(hash.NewSHA256Hasher(), stateStore, root)
	r.engine = engine.New(paths, settings, cache.NewOS(paths.Cache), remote.NewOpener(root), gitRepo, fs, hasher, root, r.log)
	return r
}

// run executes one batch the way the pull, push and fetch commands do.
func (r *testRepo) run(t *testing.T, name string, cfg sync.Config, targets ...string) sync.Result {
	t.Helper()

	var op sync.Operation
	switch name {
	case "pull":
		op = sync.NewPullOperation(r.engine, r.log)
	case "push":
		op = sync.NewPushOperation(r.engine, r.log)
	case "fetch":
		op = sync.NewFetchOperation(r.engine, r.log)
	default:
		t.Fatalf("unknown operation %q", name)
	}

	r.logs.Reset()
	return sync.NewRunner(r.log).RunResult(context.Background(), targets, op, cfg)
}

func (r *testRepo) write(t *testing.T, rel, content string) {
	t.Helper()
	path := r.paths.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func (r *testRepo) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(r.paths.Abs(rel))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

// track writes the files and adds them.
func (r *testRepo) track(t *testing.T, files map[string]string) {
	t.Helper()
	var paths []string
	for rel, content := range files {
		r.write(t, rel, content)
		paths = append(paths, rel)
	}
	if _, err := r.engine.Add(paths); err != nil {
		t.Fatalf("add failed: %v", err)
	}
}

// commit stages names and commits them on the current branch.
func (r *testRepo) commit(t *testing.T, msg string, names ...string) plumbing.Hash {
	t.Helper()
	wt, err := r.git.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("git add %s: %v", name, err)
		}
	}
	h, err := wt.Commit(msg, &git.CommitOptions{Author: &object.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}})
	if err != nil {
		t.Fatalf("git commit: %v", err)
	}
	return h
}

// branch creates a local branch at commit h.
func (r *testRepo) branch(t *testing.T, name string, h plumbing.Hash) {
	t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), h)
	if err := r.git.Storer.SetReference(ref); err != nil {
		t.Fatalf("failed to create branch %s: %v", name, err)
	}
}

// copyTargets copies target files from src, the way a clone would.
func (r *testRepo) copyTargets(t *testing.T, src *testRepo, names ...string) {
	t.Helper()
	for _, name := range names {
		r.write(t, name, src.read(t, name))
	}
}
