package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/danieljhkim/dsync/internal/checkout"
	"github.com/danieljhkim/dsync/internal/planner"
	"github.com/danieljhkim/dsync/internal/targets"
)

// Pull fetches the objects of target and checks the workspace outputs out.
// It returns the number of downloaded objects plus written files. Outputs
// found only on other revisions are fetched but not checked out.
func (e *Engine) Pull(ctx context.Context, target string, opts Options) (int, error) {
	outputs, err := e.collect(target, opts)
	if err != nil {
		return 0, err
	}

	backend, err := e.openRemote(ctx, opts.Remote)
	if err != nil {
		return 0, err
	}

	fetched, err := e.fetch(ctx, backend, planner.Objects(outputs.all), opts)
	if err != nil {
		return fetched, err
	}

	written, err := e.checkout(outputs.workspace, opts.Force)
	return fetched + written, err
}

// checkout writes outputs whose workspace file is absent or differs. A
// conflicting plan is refused before anything is written.
func (e *Engine) checkout(outputs []targets.Output, force bool) (int, error) {
	checker := planner.NewConflictChecker(e.fs, e.hasher, e.cache, force)
	plan, err := planner.BuildCheckoutPlan(outputs, e.paths.Root, checker)
	if err != nil {
		return 0, fmt.Errorf("failed to plan checkout: %w", err)
	}

	if plan.HasConflicts() {
		for _, c := range plan.Conflicts {
			e.log.Debug().Str("path", c.Path).Str("existing", c.Existing).Str("incoming", c.Incoming).Msg(c.Reason)
		}
		return 0, fmt.Errorf("%w: %s", ErrWorkspaceModified, strings.Join(plan.ConflictPaths(), ", "))
	}

	written, err := checkout.NewMaterializer(e.fs, e.cache, e.hasher).Apply(plan)
	if flushErr := e.hasher.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("failed to save hash state: %w", flushErr)
	}
	if err != nil {
		return written, err
	}

	if written > 0 {
		e.log.Info().Msgf("%d files checked out", written)
	}
	e.log.Debug().Int("written", written).Int("unchanged", plan.UpToDate).Msg("checkout finished")
	return written, nil
}
