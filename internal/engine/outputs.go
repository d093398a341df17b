package engine

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/dsync/internal/gitx"
	"github.com/danieljhkim/dsync/internal/targets"
)

// collected are the outputs a call works on.
type collected struct {
	// workspace are the outputs declared in the working tree
	workspace []targets.Output

	// all adds the outputs declared on other revisions
	all []targets.Output
}

// collect resolves target in the workspace and, when requested, in every
// branch and tag. A target missing from some revisions is fine as long as
// one revision declares it.
func (e *Engine) collect(target string, opts Options) (*collected, error) {
	rel, err := e.resolveTarget(target)
	if err != nil {
		return nil, err
	}
	resolveOpts := targets.Options{WithDeps: opts.WithDeps, Recursive: opts.Recursive}
	withRevisions := opts.AllBranches || opts.AllTags

	result := &collected{}
	found := false

	resolver := targets.NewResolver(targets.NewWorkspaceSource(e.paths.Root))
	outputs, err := resolver.Outputs(rel, resolveOpts)
	switch {
	case err == nil:
		found = true
		result.workspace = outputs
		result.all = append(result.all, outputs...)
	case withRevisions && errors.Is(err, targets.ErrTargetNotFound):
		// may be declared on another revision only
	default:
		return nil, err
	}

	if !withRevisions {
		return result, nil
	}

	revisions, err := e.revisions(opts)
	if err != nil {
		return nil, err
	}
	for _, rev := range revisions {
		src, err := targets.NewRevisionSource(e.gitRepo, rev, e.paths.Root)
		if err != nil {
			return nil, err
		}
		outputs, err := targets.NewResolver(src).Outputs(rel, resolveOpts)
		if err != nil {
			if errors.Is(err, targets.ErrTargetNotFound) {
				e.log.Debug().Str("revision", rev.String()).Str("target", rel).Msg("target not found on revision")
				continue
			}
			return nil, fmt.Errorf("%s: %w", rev, err)
		}
		found = true
		result.all = append(result.all, outputs...)
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", targets.ErrTargetNotFound, rel)
	}
	return result, nil
}

// revisions lists the branches and tags selected by opts.
func (e *Engine) revisions(opts Options) ([]gitx.Revision, error) {
	if e.gitRepo == nil {
		return nil, gitx.ErrNotGitRepo
	}

	var revs []gitx.Revision
	if opts.AllBranches {
		branches, err := e.gitRepo.Branches()
		if err != nil {
			return nil, err
		}
		revs = append(revs, branches...)
	}
	if opts.AllTags {
		tags, err := e.gitRepo.Tags()
		if err != nil {
			return nil, err
		}
		revs = append(revs, tags...)
	}
	return revs, nil
}
