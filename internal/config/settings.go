package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/danieljhkim/dsync/internal/fsops"
)

// Settings is the content of .dsync/config.toml.
type Settings struct {
	Core    CoreSettings              `mapstructure:"core" toml:"core"`
	Remotes map[string]RemoteSettings `mapstructure:"remote" toml:"remote,omitempty"`
}

// CoreSettings holds repository-wide defaults.
type CoreSettings struct {
	// Remote is the default remote name
	Remote string `mapstructure:"remote" toml:"remote,omitempty"`

	// Jobs is the default transfer parallelism, 0 means engine default
	Jobs int `mapstructure:"jobs" toml:"jobs,omitempty"`
}

// RemoteSettings describes one named remote.
type RemoteSettings struct {
	URL       string `mapstructure:"url" toml:"url"`
	Region    string `mapstructure:"region" toml:"region,omitempty"`
	Endpoint  string `mapstructure:"endpoint" toml:"endpoint,omitempty"`
	Profile   string `mapstructure:"profile" toml:"profile,omitempty"`
	PathStyle bool   `mapstructure:"path_style" toml:"path_style,omitempty"`
}

// RemoteNames returns the configured remote names, sorted.
func (s *Settings) RemoteNames() []string {
	names := make([]string, 0, len(s.Remotes))
	for name := range s.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// keyDelimiter separates nested viper keys. Remote names may contain dots,
// so the viper default "." cannot be used.
const keyDelimiter = "::"

// LoadSettings reads config.toml, applying DSYNC_* environment overrides
// (DSYNC_CORE_REMOTE, DSYNC_CORE_JOBS). A missing file yields defaults.
func LoadSettings(p *Paths) (*Settings, error) {
	return loadSettings(p, true)
}

// LoadFileSettings reads config.toml without environment overrides. Use it
// when the settings are edited and saved back.
func LoadFileSettings(p *Paths) (*Settings, error) {
	return loadSettings(p, false)
}

func loadSettings(p *Paths, withEnv bool) (*Settings, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigType("toml")
	if withEnv {
		v.SetEnvPrefix("DSYNC")
		v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
		v.AutomaticEnv()
	}
	v.SetDefault("core"+keyDelimiter+"remote", "")
	v.SetDefault("core"+keyDelimiter+"jobs", 0)

	if _, err := os.Stat(p.Config); err == nil {
		v.SetConfigFile(p.Config)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat settings: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Remotes == nil {
		s.Remotes = make(map[string]RemoteSettings)
	}
	if s.Core.Jobs < 0 {
		return nil, fmt.Errorf("invalid core.jobs %d: must be >= 0", s.Core.Jobs)
	}

	return &s, nil
}

// SaveSettings writes s to config.toml atomically.
func SaveSettings(fs fsops.FS, p *Paths, s *Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := fs.AtomicWrite(p.Config, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}
