package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/dsync/internal/sync"
)

var pullFlags syncFlags

var pullCmd = &cobra.Command{
	Use:   "pull [target...]",
	Short: "Download tracked data and check it out",
	Long: `Download the data of the given targets from a remote into the cache and
write it into the workspace.

A target is a target file (data.csv.dsync), the data path it tracks (data.csv)
or, with --recursive, a directory of target files. Without targets every
target file in the repository is pulled.

Workspace files that were modified and whose content is not cached are not
overwritten unless --force is given. Each target is pulled on its own: a
failing target is reported and the remaining targets are still pulled.

Examples:
  # Pull everything from the default remote
  dsync pull

  # Pull two targets from a named remote
  dsync pull data/raw.csv models/model.pkl -r storage

  # Pull a target and everything it depends on
  dsync pull features.dsync --with-deps

  # Overwrite local modifications
  dsync pull data/raw.csv --force`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, &pullFlags, func(e sync.Engine, log zerolog.Logger) sync.Operation {
			return sync.NewPullOperation(e, log)
		})
	},
}

func init() {
	addSyncFlags(pullCmd, &pullFlags, true)
}
