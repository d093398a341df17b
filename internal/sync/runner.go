// Package sync runs pull, push and fetch across a list of targets.
//
// A batch makes one engine call per target, in order, and never stops early:
// a failing target is logged and the next one is attempted. The batch is
// reduced to a single exit code, and the "Everything is up to date." notice
// is printed at most once, from the total processed count.
package sync

import (
	"context"

	"github.com/rs/zerolog"
)

// UpToDateMessage is logged when a batch processed nothing.
const UpToDateMessage = "Everything is up to date."

// Reporter emits the up-to-date notice.
type Reporter struct {
	log zerolog.Logger
}

// NewReporter creates a Reporter logging to log.
func NewReporter(log zerolog.Logger) *Reporter {
	return &Reporter{log: log}
}

// Report logs UpToDateMessage at info level iff total is zero.
func (r *Reporter) Report(total int) {
	if total == 0 {
		r.log.Info().Msg(UpToDateMessage)
	}
}

// Runner executes an Operation over a target list.
type Runner struct {
	log      zerolog.Logger
	reporter *Reporter
}

// NewRunner creates a Runner.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{
		log:      log,
		reporter: NewReporter(log),
	}
}

// Run executes op for every target and returns the process exit code.
func (r *Runner) Run(ctx context.Context, targets []string, op Operation, cfg Config) int {
	return r.RunResult(ctx, targets, op, cfg).ExitCode()
}

// RunResult executes op for every target, in order, and returns the
// aggregate. An empty list is a single AllTargets iteration. The reporter
// sees the total once, after every target was attempted.
func (r *Runner) RunResult(ctx context.Context, targets []string, op Operation, cfg Config) Result {
	if len(targets) == 0 {
		targets = []string{AllTargets}
	}

	var result Result
	for _, target := range targets {
		result.add(op.Execute(ctx, target, cfg))
	}

	r.log.Debug().
		Str("operation", op.Name()).
		Int("attempted", result.Attempted).
		Int("processed", result.TotalProcessed).
		Bool("failed", result.HadFailure).
		Msg("batch finished")

	r.reporter.Report(result.TotalProcessed)
	return result
}
