package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/dsync/internal/planner"
	"github.com/danieljhkim/dsync/internal/targets"
)

// Status reports the outputs of targets that are out of date. An empty
// target list selects every target file.
//
// In local mode each output is compared with its workspace file and the
// cache. In cloud mode each object is compared between the cache and the
// remote; objects present in both are omitted.
func (e *Engine) Status(ctx context.Context, targetList []string, opts StatusOptions) (*StatusResult, error) {
	if len(targetList) == 0 {
		targetList = []string{""}
	}

	collectOpts := Options{
		WithDeps:    opts.WithDeps,
		Recursive:   true,
		AllBranches: opts.Cloud && opts.AllBranches,
		AllTags:     opts.Cloud && opts.AllTags,
	}

	var workspace, all []targets.Output
	for _, target := range targetList {
		outputs, err := e.collect(target, collectOpts)
		if err != nil {
			return nil, err
		}
		workspace = append(workspace, outputs.workspace...)
		all = append(all, outputs.all...)
	}

	if opts.Cloud {
		return e.cloudStatus(ctx, all, opts)
	}
	return e.localStatus(workspace)
}

// localStatus classifies outputs against the workspace and the cache.
func (e *Engine) localStatus(outputs []targets.Output) (*StatusResult, error) {
	result := &StatusResult{}
	index := make(map[string]int)
	seen := make(map[string]bool, len(outputs))

	for _, out := range outputs {
		key := out.Target + "\x00" + out.Path
		if seen[key] {
			continue
		}
		seen[key] = true

		status, err := e.outputStatus(out)
		if err != nil {
			return nil, err
		}
		if status == "" {
			continue
		}

		i, ok := index[out.Target]
		if !ok {
			i = len(result.Targets)
			index[out.Target] = i
			result.Targets = append(result.Targets, TargetStatus{Target: out.Target})
		}
		result.Targets[i].Changes = append(result.Targets[i].Changes, Change{Path: out.Path, Status: status})
	}

	if err := e.hasher.Flush(); err != nil {
		return nil, fmt.Errorf("failed to save hash state: %w", err)
	}
	return result, nil
}

// outputStatus returns the local status of out, "" when it is up to date.
func (e *Engine) outputStatus(out targets.Output) (string, error) {
	info, err := e.fs.Stat(e.paths.Abs(out.Path))
	if err != nil {
		if os.IsNotExist(err) {
			return StatusDeleted, nil
		}
		return "", fmt.Errorf("failed to stat %s: %w", out.Path, err)
	}
	if info.IsDir() {
		return StatusModified, nil
	}

	current, err := e.hasher.Digest(out.Path, info)
	if err != nil {
		return "", err
	}
	if current != out.Digest {
		return StatusModified, nil
	}

	cached, err := e.cache.Has(out.Digest)
	if err != nil {
		return "", fmt.Errorf("failed to check cache for %s: %w", out.Path, err)
	}
	if !cached {
		return StatusNotInCache, nil
	}
	return "", nil
}

// cloudStatus classifies objects by where they are stored.
func (e *Engine) cloudStatus(ctx context.Context, outputs []targets.Output, opts StatusOptions) (*StatusResult, error) {
	backend, err := e.openRemote(ctx, opts.Remote)
	if err != nil {
		return nil, err
	}

	objects := planner.Objects(outputs)
	statuses := make([]string, len(objects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.jobs(opts.Jobs))
	for i, obj := range objects {
		g.Go(func() error {
			status, err := e.objectStatus(gctx, obj.Digest, backend.Exists)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", obj.Label(false), err)
			}
			statuses[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &StatusResult{Cloud: true, Remote: backend.Name()}
	for i, obj := range objects {
		if statuses[i] == "" {
			continue
		}
		result.Objects = append(result.Objects, ObjectStatus{
			Path:   obj.Label(false),
			Digest: obj.Digest.String(),
			Status: statuses[i],
		})
	}
	return result, nil
}

func (e *Engine) objectStatus(ctx context.Context, d digest.Digest, onRemote presence) (string, error) {
	cached, err := e.cache.Has(d)
	if err != nil {
		return "", err
	}
	remote, err := onRemote(ctx, d)
	if err != nil {
		return "", err
	}

	switch {
	case cached && remote:
		return "", nil
	case cached:
		return StatusNew, nil
	case remote:
		return StatusDeleted, nil
	default:
		return StatusMissing, nil
	}
}
