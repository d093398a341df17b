package sync

import "github.com/danieljhkim/dsync/internal/engine"

// AllTargets is the target passed to an Operation when the command was
// given no targets: the engine operates on everything it knows about.
const AllTargets = ""

// Config carries the command-line settings shared by every target of a
// batch. It is built once and passed by value to each Execute call.
type Config struct {
	// Jobs is the transfer parallelism hint, 0 means engine default
	Jobs int

	// Remote is the remote name, empty means the configured default
	Remote string

	ShowChecksums bool
	AllBranches   bool
	AllTags       bool
	WithDeps      bool
	Recursive     bool

	// Force is only honored by pull
	Force bool
}

// engineOptions translates the config for one engine call. Directions that
// do not support force never forward it.
func (c Config) engineOptions(withForce bool) engine.Options {
	opts := engine.Options{
		Jobs:          c.Jobs,
		Remote:        c.Remote,
		ShowChecksums: c.ShowChecksums,
		AllBranches:   c.AllBranches,
		AllTags:       c.AllTags,
		WithDeps:      c.WithDeps,
		Recursive:     c.Recursive,
	}
	if withForce {
		opts.Force = c.Force
	}
	return opts
}

// Outcome is the result of one Execute call: either a processed-item count
// or a failure. There is no partial state.
type Outcome struct {
	Processed int
	Failed    bool
}

// Success returns a successful outcome that processed n items.
func Success(n int) Outcome {
	return Outcome{Processed: n}
}

// Failure returns a failed outcome.
func Failure() Outcome {
	return Outcome{Failed: true}
}

// Result aggregates the outcomes of a batch.
type Result struct {
	// Attempted is the number of Execute calls made
	Attempted int

	// TotalProcessed is the sum of successful counts
	TotalProcessed int

	// HadFailure is set when any outcome failed
	HadFailure bool
}

func (r *Result) add(o Outcome) {
	r.Attempted++
	if o.Failed {
		r.HadFailure = true
		return
	}
	r.TotalProcessed += o.Processed
}

// ExitCode is 1 if any target failed, otherwise 0.
func (r Result) ExitCode() int {
	if r.HadFailure {
		return 1
	}
	return 0
}

// UpToDate reports whether the batch processed nothing.
func (r Result) UpToDate() bool {
	return r.TotalProcessed == 0
}
