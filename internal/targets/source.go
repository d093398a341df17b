package targets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danieljhkim/dsync/internal/config"
	"github.com/danieljhkim/dsync/internal/gitx"
)

// Source reads target files from one revision of the repository. All paths
// are repository-relative and slash separated; "" is the repository root.
type Source interface {
	// Name describes the revision in logs.
	Name() string

	// ReadFile returns the content of a file. A missing file yields an
	// error wrapping os.ErrNotExist.
	ReadFile(rel string) ([]byte, error)

	// IsDir reports whether rel is a directory.
	IsDir(rel string) (bool, error)

	// List returns the target files below dir, sorted.
	List(dir string) ([]string, error)
}

// skipDirs are never searched for target files.
var skipDirs = map[string]bool{
	".git":         true,
	config.DirName: true,
}

// WorkspaceSource reads target files from the working tree.
type WorkspaceSource struct {
	root string
}

// NewWorkspaceSource creates a Source for the working tree at root.
func NewWorkspaceSource(root string) *WorkspaceSource {
	return &WorkspaceSource{root: root}
}

// Name returns "workspace".
func (s *WorkspaceSource) Name() string {
	return "workspace"
}

func (s *WorkspaceSource) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// ReadFile reads a file from the working tree.
func (s *WorkspaceSource) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(s.abs(rel))
}

// IsDir reports whether rel is a directory of the working tree.
func (s *WorkspaceSource) IsDir(rel string) (bool, error) {
	info, err := os.Stat(s.abs(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// List walks dir for target files, skipping .git and .dsync.
func (s *WorkspaceSource) List(dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(s.abs(dir), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), config.TargetExt) {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		found = append(found, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list target files: %w", err)
	}

	sort.Strings(found)
	return found, nil
}

// RevisionSource reads target files from a git revision.
type RevisionSource struct {
	repo   gitx.Repo
	rev    gitx.Revision
	prefix string
	files  []string
}

// NewRevisionSource creates a Source for rev. root is the dsync repository
// root, which may be a subdirectory of the git worktree.
func NewRevisionSource(repo gitx.Repo, rev gitx.Revision, root string) (*RevisionSource, error) {
	prefix, err := filepath.Rel(repo.Root(), root)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %s in git worktree: %w", root, err)
	}
	prefix = filepath.ToSlash(prefix)
	if prefix == "." {
		prefix = ""
	}
	if prefix == ".." || strings.HasPrefix(prefix, "../") {
		return nil, fmt.Errorf("%s is outside git worktree %s", root, repo.Root())
	}

	return &RevisionSource{repo: repo, rev: rev, prefix: prefix}, nil
}

// Name returns the revision description.
func (s *RevisionSource) Name() string {
	return s.rev.String()
}

func (s *RevisionSource) gitPath(rel string) string {
	return path.Join(s.prefix, rel)
}

// ReadFile reads a file from the revision tree.
func (s *RevisionSource) ReadFile(rel string) ([]byte, error) {
	return s.repo.ReadFile(s.rev, s.gitPath(rel))
}

// IsDir reports whether any target file lives below rel in the revision.
func (s *RevisionSource) IsDir(rel string) (bool, error) {
	files, err := s.List(rel)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// List returns the target files of the revision below dir.
func (s *RevisionSource) List(dir string) ([]string, error) {
	if s.files == nil {
		all, err := s.repo.Files(s.rev, config.TargetExt)
		if err != nil {
			return nil, err
		}
		s.files = make([]string, 0, len(all))
		for _, name := range all {
			rel, ok := underDir(name, s.prefix)
			if ok {
				s.files = append(s.files, rel)
			}
		}
	}

	var found []string
	for _, name := range s.files {
		if _, ok := underDir(name, dir); ok && !inSkipDir(name) {
			found = append(found, name)
		}
	}
	return found, nil
}

// underDir returns name relative to dir if it is below it.
func underDir(name, dir string) (string, bool) {
	if dir == "" || dir == "." {
		return name, true
	}
	dir = strings.TrimSuffix(path.Clean(dir), "/")
	if rest, ok := strings.CutPrefix(name, dir+"/"); ok {
		return rest, true
	}
	return "", false
}

func inSkipDir(name string) bool {
	for _, part := range strings.Split(path.Dir(name), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
