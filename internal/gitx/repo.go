// Package gitx reads target files from other git revisions.
//
// pull, push and fetch accept --all-branches and --all-tags: the targets are
// then resolved in the workspace and in every branch or tag commit, so data
// recorded only on another revision is transferred too. gitx lists those
// revisions and reads files from their trees through go-git, without
// touching the worktree.
package gitx

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotGitRepo is returned when no git repository encloses the workspace.
var ErrNotGitRepo = errors.New("not a git repository, --all-branches and --all-tags need one")

// RevisionKind classifies a revision.
type RevisionKind string

const (
	// KindBranch is a local branch (refs/heads/*).
	KindBranch RevisionKind = "branch"

	// KindTag is a tag (refs/tags/*), peeled to its commit.
	KindTag RevisionKind = "tag"
)

// Revision is a named commit.
type Revision struct {
	Name string
	Kind RevisionKind
	Hash plumbing.Hash
}

// String returns "<kind> <name>".
func (r Revision) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.Name)
}

// Repo provides an abstraction for the git repository reads dsync needs.
type Repo interface {
	// Root returns the worktree root.
	Root() string

	// Branches returns the local branches, sorted by name.
	Branches() ([]Revision, error)

	// Tags returns the tags, sorted by name.
	Tags() ([]Revision, error)

	// ReadFile returns the content of a root-relative slash path at rev.
	// A missing file yields an error wrapping os.ErrNotExist.
	ReadFile(rev Revision, name string) ([]byte, error)

	// Files returns the root-relative paths at rev ending in suffix, sorted.
	Files(rev Revision, suffix string) ([]string, error)
}

// GoGitRepo implements Repo with go-git.
type GoGitRepo struct {
	repo *git.Repository
	root string
}

// Open opens the git repository enclosing path.
func Open(path string) (*GoGitRepo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotGitRepo
		}
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, ErrNotGitRepo
		}
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	return &GoGitRepo{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the worktree root.
func (g *GoGitRepo) Root() string {
	return g.root
}

// Branches returns the local branches, sorted by name.
func (g *GoGitRepo) Branches() ([]Revision, error) {
	iter, err := g.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var revs []Revision
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		revs = append(revs, Revision{
			Name: ref.Name().Short(),
			Kind: KindBranch,
			Hash: ref.Hash(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	sortRevisions(revs)
	return revs, nil
}

// Tags returns the tags, sorted by name. Annotated tags are peeled to the
// commit they point at; tags of non-commit objects are skipped.
func (g *GoGitRepo) Tags() ([]Revision, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var revs []Revision
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()

		tag, err := g.repo.TagObject(hash)
		switch {
		case err == nil:
			commit, err := tag.Commit()
			if err != nil {
				return nil
			}
			hash = commit.Hash
		case !errors.Is(err, plumbing.ErrObjectNotFound):
			return fmt.Errorf("failed to read tag %s: %w", ref.Name().Short(), err)
		}

		revs = append(revs, Revision{
			Name: ref.Name().Short(),
			Kind: KindTag,
			Hash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	sortRevisions(revs)
	return revs, nil
}

// ReadFile returns the content of name at rev.
func (g *GoGitRepo) ReadFile(rev Revision, name string) ([]byte, error) {
	commit, err := g.repo.CommitObject(rev.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit of %s: %w", rev, err)
	}

	file, err := commit.File(path.Clean(name))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%s at %s: %w", name, rev, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read %s at %s: %w", name, rev, err)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", name, rev, err)
	}
	return []byte(contents), nil
}

// Files returns the paths at rev ending in suffix, sorted.
func (g *GoGitRepo) Files(rev Revision, suffix string) ([]string, error) {
	commit, err := g.repo.CommitObject(rev.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit of %s: %w", rev, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", rev, err)
	}

	var names []string
	err = tree.Files().ForEach(func(f *object.File) error {
		if strings.HasSuffix(f.Name, suffix) {
			names = append(names, f.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tree of %s: %w", rev, err)
	}

	sort.Strings(names)
	return names, nil
}

func sortRevisions(revs []Revision) {
	sort.Slice(revs, func(i, j int) bool {
		return revs[i].Name < revs[j].Name
	})
}
