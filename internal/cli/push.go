package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/dsync/internal/sync"
)

var pushFlags syncFlags

var pushCmd = &cobra.Command{
	Use:   "push [target...]",
	Short: "Upload tracked data to a remote",
	Long: `Upload the cached data of the given targets to a remote.

Only objects missing on the remote are uploaded. Without targets every target
file in the repository is pushed. A failing target is reported and the
remaining targets are still pushed.

Examples:
  # Push everything to the default remote
  dsync push

  # Push one directory of targets with 16 parallel uploads
  dsync push data -R -j 16

  # Push data recorded on every branch
  dsync push --all-branches`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, &pushFlags, func(e sync.Engine, log zerolog.Logger) sync.Operation {
			return sync.NewPushOperation(e, log)
		})
	},
}

func init() {
	addSyncFlags(pushCmd, &pushFlags, false)
}
