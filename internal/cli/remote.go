package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/dsync/internal/config"
	"github.com/danieljhkim/dsync/internal/fsops"
	"github.com/danieljhkim/dsync/internal/remote"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage data remotes",
	Long: `Manage the remotes data is pushed to and fetched from.

Remotes are stored in .dsync/config.toml under [remote.<name>]; the default
remote is core.remote. Supported URLs:

  /abs/dir, rel/dir, file:///dir   directory (relative to the repository root)
  s3://bucket/prefix               Amazon S3 or an S3 compatible service
  mem://name                       in-process store, for testing`,
}

var (
	remoteAddDefault   bool
	remoteAddForce     bool
	remoteAddRegion    string
	remoteAddEndpoint  string
	remoteAddProfile   string
	remoteAddPathStyle bool
)

var remoteAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a remote",
	Long: `Add a remote called name.

Examples:
  # A shared directory, made the default remote
  dsync remote add -d shared /mnt/team/dsync

  # An S3 compatible service
  dsync remote add storage s3://datasets/project --endpoint http://localhost:9000 --path-style`,
	Args: cobra.ExactArgs(2),
	RunE: runRemoteAdd,
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a remote",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoteRemove,
}

var remoteDefaultCmd = &cobra.Command{
	Use:   "default [name]",
	Short: "Show or set the default remote",
	Long: `Show the default remote, or make name the default.

Examples:
  # Show the default remote
  dsync remote default

  # Use storage when --remote is not given
  dsync remote default storage`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRemoteDefault,
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remotes",
	Args:  cobra.NoArgs,
	RunE:  runRemoteList,
}

func init() {
	remoteAddCmd.Flags().BoolVarP(&remoteAddDefault, "default", "d", false, "Make this the default remote")
	remoteAddCmd.Flags().BoolVarP(&remoteAddForce, "force", "f", false, "Replace an existing remote")
	remoteAddCmd.Flags().StringVar(&remoteAddRegion, "region", "", "S3 region")
	remoteAddCmd.Flags().StringVar(&remoteAddEndpoint, "endpoint", "", "S3 endpoint URL")
	remoteAddCmd.Flags().StringVar(&remoteAddProfile, "profile", "", "AWS shared config profile")
	remoteAddCmd.Flags().BoolVar(&remoteAddPathStyle, "path-style", false, "Use path-style S3 addressing")

	remoteCmd.AddCommand(remoteAddCmd)
	remoteCmd.AddCommand(remoteRemoveCmd)
	remoteCmd.AddCommand(remoteDefaultCmd)
	remoteCmd.AddCommand(remoteListCmd)
}

// loadRepoSettings discovers the repository and loads config.toml as written,
// without environment overrides, since remote commands save it back.
func loadRepoSettings() (*config.Paths, *config.Settings, error) {
	paths, _, err := discoverRepo()
	if err != nil {
		return nil, nil, err
	}

	settings, err := config.LoadFileSettings(paths)
	if err != nil {
		return nil, nil, err
	}
	return paths, settings, nil
}

func runRemoteAdd(cmd *cobra.Command, args []string) error {
	// Remote names are config keys, which are case-insensitive
	name, url := strings.ToLower(args[0]), args[1]

	fs := fsops.NewRealFS()
	if err := fs.ValidateName(name); err != nil {
		return err
	}
	if err := remote.ValidateURL(url); err != nil {
		return err
	}

	paths, settings, err := loadRepoSettings()
	if err != nil {
		return err
	}

	if _, exists := settings.Remotes[name]; exists && !remoteAddForce {
		return fmt.Errorf("remote %q already exists\nUse --force to replace it", name)
	}

	settings.Remotes[name] = config.RemoteSettings{
		URL:       url,
		Region:    remoteAddRegion,
		Endpoint:  remoteAddEndpoint,
		Profile:   remoteAddProfile,
		PathStyle: remoteAddPathStyle,
	}
	if remoteAddDefault {
		settings.Core.Remote = name
	}

	if err := config.SaveSettings(fs, paths, settings); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Remote %q added", name))
	if remoteAddDefault {
		PrintInfo(fmt.Sprintf("Default remote: %s", name))
	}
	return nil
}

func runRemoteRemove(cmd *cobra.Command, args []string) error {
	name := strings.ToLower(args[0])

	paths, settings, err := loadRepoSettings()
	if err != nil {
		return err
	}

	if _, exists := settings.Remotes[name]; !exists {
		return fmt.Errorf("%w: %s", remote.ErrRemoteNotFound, name)
	}

	delete(settings.Remotes, name)
	if settings.Core.Remote == name {
		settings.Core.Remote = ""
	}

	if err := config.SaveSettings(fsops.NewRealFS(), paths, settings); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Remote %q removed", name))
	return nil
}

func runRemoteDefault(cmd *cobra.Command, args []string) error {
	paths, settings, err := loadRepoSettings()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if settings.Core.Remote == "" {
			PrintWarning("No default remote")
			PrintInfo("Run 'dsync remote default <name>' to set one")
			return nil
		}
		PrintInfo(settings.Core.Remote)
		return nil
	}

	name := strings.ToLower(args[0])
	if _, exists := settings.Remotes[name]; !exists {
		return fmt.Errorf("%w: %s", remote.ErrRemoteNotFound, name)
	}

	settings.Core.Remote = name
	if err := config.SaveSettings(fsops.NewRealFS(), paths, settings); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Default remote set to %q", name))
	return nil
}

// remoteEntry is one remote in the list --json output.
type remoteEntry struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Default bool   `json:"default"`
}

func runRemoteList(cmd *cobra.Command, args []string) error {
	_, settings, err := loadRepoSettings()
	if err != nil {
		return err
	}

	names := settings.RemoteNames()
	entries := make([]remoteEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, remoteEntry{
			Name:    name,
			URL:     settings.Remotes[name].URL,
			Default: name == settings.Core.Remote,
		})
	}

	if jsonOutput {
		return outputJSON(entries)
	}

	if len(entries) == 0 {
		PrintEmptyState("No remotes configured")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		marker := ""
		if e.Default {
			marker = "*"
		}
		rows = append(rows, []string{marker, e.Name, e.URL})
	}
	PrintTable([]string{"", "NAME", "URL"}, rows)
	return nil
}
