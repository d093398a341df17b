package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/dsync/internal/sync"
)

var fetchFlags syncFlags

var fetchCmd = &cobra.Command{
	Use:   "fetch [target...]",
	Short: "Download tracked data into the cache",
	Long: `Download the data of the given targets from a remote into the cache
without touching the workspace. Run 'dsync pull' to also check it out.

Examples:
  # Fetch everything, including data of every tag
  dsync fetch --all-tags

  # Fetch one target, naming objects by checksum in the logs
  dsync fetch data/raw.csv --show-checksums -v`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, &fetchFlags, func(e sync.Engine, log zerolog.Logger) sync.Operation {
			return sync.NewFetchOperation(e, log)
		})
	},
}

func init() {
	addSyncFlags(fetchCmd, &fetchFlags, false)
}
