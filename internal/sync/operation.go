package sync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/dsync/internal/engine"
)

// Engine is the part of the sync engine the batch operations drive.
// target is a target identifier or AllTargets.
type Engine interface {
	Pull(ctx context.Context, target string, opts engine.Options) (int, error)
	Push(ctx context.Context, target string, opts engine.Options) (int, error)
	Fetch(ctx context.Context, target string, opts engine.Options) (int, error)
}

// Operation applies one transfer direction to a single target. Engine
// errors never escape Execute: they are logged once and reported as a
// failed Outcome.
type Operation interface {
	// Name is the command name of the operation ("pull", "push", "fetch").
	Name() string

	// Execute makes exactly one engine call for target.
	Execute(ctx context.Context, target string, cfg Config) Outcome
}

type operation struct {
	engine Engine
	log    zerolog.Logger
}

// fail logs the direction-specific error line and returns a failed outcome.
func (o operation) fail(msg, target string, err error) Outcome {
	event := o.log.Error().Err(err)
	if target != AllTargets {
		event = event.Str("target", target)
	}
	event.Msg(msg)
	return Failure()
}

// PullOperation fetches targets into the cache and checks them out.
type PullOperation struct{ operation }

// NewPullOperation returns the pull variant.
func NewPullOperation(e Engine, log zerolog.Logger) *PullOperation {
	return &PullOperation{operation{engine: e, log: log}}
}

// Name returns "pull".
func (o *PullOperation) Name() string { return "pull" }

// Execute pulls a single target.
func (o *PullOperation) Execute(ctx context.Context, target string, cfg Config) Outcome {
	n, err := o.engine.Pull(ctx, target, cfg.engineOptions(true))
	if err != nil {
		return o.fail("failed to pull data from the cloud", target, err)
	}
	return Success(n)
}

// PushOperation uploads cached target data to the remote.
type PushOperation struct{ operation }

// NewPushOperation returns the push variant.
func NewPushOperation(e Engine, log zerolog.Logger) *PushOperation {
	return &PushOperation{operation{engine: e, log: log}}
}

// Name returns "push".
func (o *PushOperation) Name() string { return "push" }

// Execute pushes a single target.
func (o *PushOperation) Execute(ctx context.Context, target string, cfg Config) Outcome {
	n, err := o.engine.Push(ctx, target, cfg.engineOptions(false))
	if err != nil {
		return o.fail("failed to push data to the cloud", target, err)
	}
	return Success(n)
}

// FetchOperation downloads target data into the cache without touching the
// workspace.
type FetchOperation struct{ operation }

// NewFetchOperation returns the fetch variant.
func NewFetchOperation(e Engine, log zerolog.Logger) *FetchOperation {
	return &FetchOperation{operation{engine: e, log: log}}
}

// Name returns "fetch".
func (o *FetchOperation) Name() string { return "fetch" }

// Execute fetches a single target.
func (o *FetchOperation) Execute(ctx context.Context, target string, cfg Config) Outcome {
	n, err := o.engine.Fetch(ctx, target, cfg.engineOptions(false))
	if err != nil {
		return o.fail("failed to fetch data from the cloud", target, err)
	}
	return Success(n)
}
