package engine

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/planner"
	"github.com/danieljhkim/dsync/internal/remote"
)

// Push uploads the cached objects of target that are missing on the remote
// and returns how many were uploaded.
func (e *Engine) Push(ctx context.Context, target string, opts Options) (int, error) {
	outputs, err := e.collect(target, opts)
	if err != nil {
		return 0, err
	}

	backend, err := e.openRemote(ctx, opts.Remote)
	if err != nil {
		return 0, err
	}

	objects := planner.Objects(outputs.all)
	jobs := e.jobs(opts.Jobs)

	inCache := func(_ context.Context, d digest.Digest) (bool, error) {
		return e.cache.Has(d)
	}
	plan, err := planTransfer(ctx, objects, backend.Exists, inCache, jobs)
	if err != nil {
		return 0, err
	}

	e.log.Debug().
		Str("remote", backend.Name()).
		Int("objects", len(objects)).
		Int("on_remote", plan.Present).
		Int("upload", len(plan.Transfers)).
		Int("missing", len(plan.Missing)).
		Str("bytes", humanize.Bytes(uint64(plan.Bytes()))).
		Msg("push planned")

	n, size, err := runTransfers(ctx, plan.Transfers, jobs, func(ctx context.Context, obj planner.Object) error {
		return e.upload(ctx, backend, obj, opts.ShowChecksums)
	})
	if n > 0 {
		e.log.Info().Msgf("%d files pushed to '%s' (%s)", n, backend.Name(), humanize.Bytes(uint64(size)))
	}
	if err != nil {
		return n, err
	}

	if len(plan.Missing) > 0 {
		return n, missingError(ErrMissingInCache, plan.Missing, opts.ShowChecksums)
	}
	return n, nil
}

// upload copies one object from the cache to the remote.
func (e *Engine) upload(ctx context.Context, backend remote.Backend, obj planner.Object, showChecksums bool) error {
	label := obj.Label(showChecksums)

	size, err := e.cache.Size(obj.Digest)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", label, err)
	}

	f, err := e.cache.Open(obj.Digest)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", label, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := backend.Upload(ctx, obj.Digest, f, size); err != nil {
		return fmt.Errorf("failed to upload %s: %w", label, err)
	}

	e.log.Debug().Str("object", label).Str("size", humanize.Bytes(uint64(size))).Msg("uploaded")
	return nil
}
