package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/dsync/internal/planner"
)

// presence reports whether an object is stored somewhere.
type presence func(ctx context.Context, d digest.Digest) (bool, error)

// planTransfer classifies objects against a destination and a source. An
// object already at the destination is never looked up at the source. The
// lookups run with at most jobs in flight; the plan keeps the input order.
func planTransfer(ctx context.Context, objects []planner.Object, inDest, inSource presence, jobs int) (*planner.TransferPlan, error) {
	const (
		present = iota + 1
		transfer
		missing
	)

	kinds := make([]int, len(objects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, obj := range objects {
		g.Go(func() error {
			ok, err := inDest(gctx, obj.Digest)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", obj.Digest, err)
			}
			if ok {
				kinds[i] = present
				return nil
			}
			ok, err = inSource(gctx, obj.Digest)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", obj.Digest, err)
			}
			if ok {
				kinds[i] = transfer
			} else {
				kinds[i] = missing
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := planner.NewTransferPlan()
	for i, obj := range objects {
		switch kinds[i] {
		case present:
			plan.Present++
		case transfer:
			plan.Transfers = append(plan.Transfers, obj)
		case missing:
			plan.Missing = append(plan.Missing, obj)
		}
	}
	return plan, nil
}

// runTransfers calls fn for every planned transfer with at most jobs in
// flight and returns how many completed and their total size. The first
// error cancels the transfers not yet started.
func runTransfers(ctx context.Context, objects []planner.Object, jobs int, fn func(context.Context, planner.Object) error) (int, int64, error) {
	var done, bytes atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, obj := range objects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, obj); err != nil {
				return err
			}
			done.Add(1)
			bytes.Add(obj.Size)
			return nil
		})
	}
	err := g.Wait()
	return int(done.Load()), bytes.Load(), err
}

// missingError lists objects absent from the source of a transfer.
func missingError(sentinel error, objects []planner.Object, showChecksums bool) error {
	labels := make([]string, len(objects))
	for i, obj := range objects {
		labels[i] = obj.Label(showChecksums)
	}
	return fmt.Errorf("%d objects %w: %s", len(objects), sentinel, strings.Join(labels, ", "))
}
