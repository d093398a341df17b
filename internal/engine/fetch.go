package engine

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/planner"
	"github.com/danieljhkim/dsync/internal/remote"
)

// Fetch downloads the objects of target that are missing from the cache
// and returns how many were downloaded. The workspace is not touched.
func (e *Engine) Fetch(ctx context.Context, target string, opts Options) (int, error) {
	outputs, err := e.collect(target, opts)
	if err != nil {
		return 0, err
	}

	backend, err := e.openRemote(ctx, opts.Remote)
	if err != nil {
		return 0, err
	}

	return e.fetch(ctx, backend, planner.Objects(outputs.all), opts)
}

// fetch downloads objects missing from the cache. Objects absent from the
// remote fail the call once the other downloads are done.
func (e *Engine) fetch(ctx context.Context, backend remote.Backend, objects []planner.Object, opts Options) (int, error) {
	jobs := e.jobs(opts.Jobs)

	inCache := func(_ context.Context, d digest.Digest) (bool, error) {
		return e.cache.Has(d)
	}
	plan, err := planTransfer(ctx, objects, inCache, backend.Exists, jobs)
	if err != nil {
		return 0, err
	}

	e.log.Debug().
		Str("remote", backend.Name()).
		Int("objects", len(objects)).
		Int("cached", plan.Present).
		Int("download", len(plan.Transfers)).
		Int("missing", len(plan.Missing)).
		Str("bytes", humanize.Bytes(uint64(plan.Bytes()))).
		Msg("fetch planned")

	n, size, err := runTransfers(ctx, plan.Transfers, jobs, func(ctx context.Context, obj planner.Object) error {
		return e.download(ctx, backend, obj, opts.ShowChecksums)
	})
	if n > 0 {
		e.log.Info().Msgf("%d files fetched from '%s' (%s)", n, backend.Name(), humanize.Bytes(uint64(size)))
	}
	if err != nil {
		return n, err
	}

	if len(plan.Missing) > 0 {
		return n, missingError(ErrMissingOnRemote, plan.Missing, opts.ShowChecksums)
	}
	return n, nil
}

// download copies one object from the remote into the cache. The cache
// verifies the content against the digest before committing it.
func (e *Engine) download(ctx context.Context, backend remote.Backend, obj planner.Object, showChecksums bool) error {
	label := obj.Label(showChecksums)

	rc, err := backend.Open(ctx, obj.Digest)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", label, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	size, err := e.cache.Put(obj.Digest, rc)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", label, err)
	}

	e.log.Debug().Str("object", label).Str("size", humanize.Bytes(uint64(size))).Msg("downloaded")
	return nil
}
