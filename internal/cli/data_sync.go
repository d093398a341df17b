package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/dsync/internal/sync"
)

// syncFlags holds the flags of one data transfer command.
type syncFlags struct {
	jobs          int
	showChecksums bool
	remote        string
	allBranches   bool
	allTags       bool
	withDeps      bool
	recursive     bool
	force         bool
}

// addSyncFlags registers the transfer flags on cmd. Only pull takes --force.
func addSyncFlags(cmd *cobra.Command, f *syncFlags, withForce bool) {
	flags := cmd.Flags()
	flags.IntVarP(&f.jobs, "jobs", "j", 0, "Number of parallel transfers (default: core.jobs or 4 * CPUs)")
	flags.BoolVar(&f.showChecksums, "show-checksums", false, "Show checksums instead of file names")
	flags.StringVarP(&f.remote, "remote", "r", "", "Remote to use (default: core.remote)")
	flags.BoolVarP(&f.allBranches, "all-branches", "a", false, "Include data recorded on every local branch")
	flags.BoolVarP(&f.allTags, "all-tags", "T", false, "Include data recorded on every tag")
	flags.BoolVarP(&f.withDeps, "with-deps", "d", false, "Include the dependencies of the targets")
	flags.BoolVarP(&f.recursive, "recursive", "R", false, "Expand directory targets to the target files inside them")
	if withForce {
		flags.BoolVarP(&f.force, "force", "f", false, "Overwrite modified workspace files")
	}
}

func (f *syncFlags) config() sync.Config {
	return sync.Config{
		Jobs:          f.jobs,
		Remote:        f.remote,
		ShowChecksums: f.showChecksums,
		AllBranches:   f.allBranches,
		AllTags:       f.allTags,
		WithDeps:      f.withDeps,
		Recursive:     f.recursive,
		Force:         f.force,
	}
}

// syncResult is the --json output of pull, push and fetch.
type syncResult struct {
	Operation string `json:"operation"`
	Targets   int    `json:"targets"`
	Processed int    `json:"processed"`
	Failed    bool   `json:"failed"`
	UpToDate  bool   `json:"up_to_date"`
}

// runBatch runs the operation built by newOp over the positional targets.
// Target failures are logged by the operation; the batch only turns into a
// non-zero exit code.
func runBatch(cmd *cobra.Command, args []string, f *syncFlags, newOp func(sync.Engine, zerolog.Logger) sync.Operation) error {
	if f.jobs < 0 {
		return fmt.Errorf("invalid --jobs %d: must be >= 0", f.jobs)
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	op := newOp(eng, logger)
	result := sync.NewRunner(logger).RunResult(ctx, args, op, f.config())

	if jsonOutput {
		if err := outputJSON(syncResult{
			Operation: op.Name(),
			Targets:   result.Attempted,
			Processed: result.TotalProcessed,
			Failed:    result.HadFailure,
			UpToDate:  result.UpToDate(),
		}); err != nil {
			return err
		}
	}

	return exitCode(result.ExitCode())
}
