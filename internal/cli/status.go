package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/dsync/internal/engine"
)

var (
	statusJobs          int
	statusShowChecksums bool
	statusQuiet         bool
	statusCloud         bool
	statusRemote        string
	statusAllBranches   bool
	statusAllTags       bool
	statusWithDeps      bool
)

var statusCmd = &cobra.Command{
	Use:   "status [target...]",
	Short: "Show changed data",
	Long: `Show tracked outputs that differ from their target files.

By default the workspace is compared with the target files and the cache:
outputs are reported as modified, deleted or not in cache. With --cloud (or
--remote) the cache is compared with a remote instead: objects are reported
as new (cache only), deleted (remote only) or missing (neither).

Examples:
  # Local status of every target
  dsync status

  # Compare the cache with the default remote
  dsync status -c

  # Script-friendly: exit 1 if anything changed
  dsync status -q`,
	Args: cobra.ArbitraryArgs,
	RunE: runStatus,
}

func init() {
	flags := statusCmd.Flags()
	flags.IntVarP(&statusJobs, "jobs", "j", 0, "Number of parallel remote checks (default: core.jobs or 4 * CPUs)")
	flags.BoolVar(&statusShowChecksums, "show-checksums", false, "Show checksums instead of file names")
	flags.BoolVarP(&statusQuiet, "quiet", "q", false, "Print nothing; exit 1 if anything is out of date")
	flags.BoolVarP(&statusCloud, "cloud", "c", false, "Compare the cache with a remote")
	flags.StringVarP(&statusRemote, "remote", "r", "", "Remote to compare with (implies --cloud)")
	flags.BoolVarP(&statusAllBranches, "all-branches", "a", false, "Include data recorded on every local branch (cloud only)")
	flags.BoolVarP(&statusAllTags, "all-tags", "T", false, "Include data recorded on every tag (cloud only)")
	flags.BoolVarP(&statusWithDeps, "with-deps", "d", false, "Include the dependencies of the targets")
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := engine.StatusOptions{
		Cloud:       statusCloud || statusRemote != "",
		Remote:      statusRemote,
		Jobs:        statusJobs,
		AllBranches: statusAllBranches,
		AllTags:     statusAllTags,
		WithDeps:    statusWithDeps,
	}

	result, err := eng.Status(ctx, args, opts)
	if err != nil {
		logger.Error().Err(err).Msg("failed to obtain data status")
		return exitCode(1)
	}

	if statusQuiet {
		if result.InSync() {
			return nil
		}
		return exitCode(1)
	}

	if jsonOutput {
		return outputJSON(result)
	}

	printStatus(result)
	return nil
}

func printStatus(result *engine.StatusResult) {
	if result.InSync() {
		if result.Cloud {
			PrintSuccess(fmt.Sprintf("Cache and remote '%s' are in sync.", result.Remote))
		} else {
			PrintSuccess("Data and pipelines are up to date.")
		}
		return
	}

	for _, ts := range result.Targets {
		PrintSubsection(ts.Target + ":")
		for _, c := range ts.Changes {
			PrintStatusLine(c.Status, c.Path, 1)
		}
	}

	for _, obj := range result.Objects {
		label := obj.Path
		if statusShowChecksums {
			label = obj.Digest
		}
		PrintStatusLine(obj.Status, label, 1)
	}
}
