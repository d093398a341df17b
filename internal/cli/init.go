package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/dsync/internal/config"
	"github.com/danieljhkim/dsync/internal/fsops"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a dsync repository",
	Long: `Initialize a .dsync directory in the current directory.

This creates .dsync/{cache,tmp} and an empty config.toml. A .dsync/.gitignore
keeps the cache and scratch state out of git while config.toml stays
committable.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"Reinitialize even if .dsync already exists (idempotent)")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	paths := config.RepoPaths(cwd)
	if info, err := os.Stat(paths.Meta); err == nil && info.IsDir() {
		if !initForce {
			return fmt.Errorf("%s already exists\nUse --force to reinitialize", paths.Meta)
		}
		PrintInfo(fmt.Sprintf("%s already exists (reinitializing with --force)", paths.Meta))
	}

	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	fs := fsops.NewRealFS()
	if exists, err := fs.Exists(paths.Config); err != nil {
		return err
	} else if !exists {
		if err := config.SaveSettings(fs, paths, &config.Settings{}); err != nil {
			return err
		}
	}

	gitignore := filepath.Join(paths.Meta, ".gitignore")
	if err := fs.AtomicWrite(gitignore, []byte("# dsync artifacts (local-only)\n/cache\n/tmp\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Initialized dsync repository at %s", paths.Root))
	fmt.Println()
	PrintInfo("Next steps:")
	fmt.Println("  1. Configure a remote:  dsync remote add -d storage s3://bucket/path")
	fmt.Println("  2. Track data:          dsync add data/raw.csv")
	fmt.Println("  3. Upload it:           dsync push")

	return nil
}
