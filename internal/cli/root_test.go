package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	resetFlags()
	rootCmd.SetArgs([]string{"--help"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if output == "" {
		t.Error("expected help output, got empty string")
	}
	if !strings.Contains(output, "dsync") {
		t.Error("expected help to contain 'dsync'")
	}
	if !strings.Contains(output, "Data Synchronization:") {
		t.Error("expected help to list the data synchronization group")
	}
}

func TestRootCommand_Version(t *testing.T) {
	resetFlags()
	SetVersion("1.2.3")
	// Cobra uses --version flag, not a version subcommand
	rootCmd.SetArgs([]string{"--version"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(buf.String(), "1.2.3") {
		t.Errorf("expected version output to contain version, got %q", buf.String())
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	resetFlags()
	rootCmd.SetArgs([]string{"invalid-command"})
	var buf bytes.Buffer
	rootCmd.SetErr(&buf)

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"normal version", "1.2.3", "1.2.3"},
		{"empty version", "", "1.2.3"}, // Should not change if empty
		{"dev version", "dev", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.version)
			if rootCmd.Version != tt.want {
				t.Errorf("SetVersion(%q) = %q, want %q", tt.version, rootCmd.Version, tt.want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	subcommands := [][]string{
		{"pull"}, {"push"}, {"fetch"}, {"status"}, {"add"},
		{"init"}, {"remote"}, {"remote", "add"}, {"remote", "remove"},
		{"remote", "default"}, {"remote", "list"}, {"version"}, {"completion"},
	}

	for _, path := range subcommands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			subCmd, _, err := rootCmd.Find(path)
			if err != nil {
				t.Errorf("Find(%q) error = %v", path, err)
			}
			if subCmd == nil || subCmd.Name() != path[len(path)-1] {
				t.Errorf("Find(%q) returned %v", path, subCmd)
			}
		})
	}
}

func TestSyncCommands_Flags(t *testing.T) {
	shared := []string{"jobs", "show-checksums", "remote", "all-branches", "all-tags", "with-deps", "recursive"}

	tests := []struct {
		name      string
		wantForce bool
	}{
		{"pull", true},
		{"push", false},
		{"fetch", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.name})
			if err != nil {
				t.Fatalf("Find(%q) error = %v", tt.name, err)
			}
			for _, name := range shared {
				if cmd.Flags().Lookup(name) == nil {
					t.Errorf("%s: missing --%s", tt.name, name)
				}
			}
			if got := cmd.Flags().Lookup("force") != nil; got != tt.wantForce {
				t.Errorf("%s: has --force = %v, want %v", tt.name, got, tt.wantForce)
			}
		})
	}
}

func TestStatusCommand_Flags(t *testing.T) {
	shorthands := map[string]string{
		"quiet":        "q",
		"cloud":        "c",
		"remote":       "r",
		"all-branches": "a",
		"all-tags":     "T",
		"with-deps":    "d",
		"jobs":         "j",
	}

	for name, short := range shorthands {
		f := statusCmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("status: missing --%s", name)
			continue
		}
		if f.Shorthand != short {
			t.Errorf("status --%s: shorthand %q, want %q", name, f.Shorthand, short)
		}
	}
}
