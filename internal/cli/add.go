package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Track data files with target files",
	Long: `Store the given files or directories in the cache and write a target file
(<path>.dsync) next to each. Commit the target files to git and run
'dsync push' to upload the data.

Examples:
  # Track one file
  dsync add data/raw.csv

  # Track a whole directory with a single target file
  dsync add data/images`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	written, err := eng.Add(args)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(map[string][]string{"targets": written})
	}

	PrintSuccess(fmt.Sprintf("Added %s:", PrintCount(len(written), "target", "targets")))
	PrintList(written, 1)
	return nil
}
