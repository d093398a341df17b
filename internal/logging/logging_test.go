package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log, closer := New(Options{Out: &buf, NoColor: true})
	defer closer.Close()

	log.Info().Msg("Everything is up to date.")
	log.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, "INF Everything is up to date.")
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default", opts: Options{}, wantDebug: false, wantInfo: true},
		{name: "verbose", opts: Options{Verbose: true}, wantDebug: true, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Out = &buf
			tt.opts.NoColor = true
			log, _ := New(tt.opts)

			log.Debug().Msg("debug line")
			log.Info().Msg("info line")
			log.Error().Msg("error line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info line"))
			assert.Contains(t, out, "ERR error line")
		})
	}
}

func TestNew_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dsync.log")
	var buf bytes.Buffer
	log, closer := New(Options{Out: &buf, NoColor: true, File: path})

	log.Error().Str("target", "data.dsync").Msg("failed to push data to the cloud")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"failed to push data to the cloud"`)
	assert.Contains(t, string(data), `"target":"data.dsync"`)
	assert.Contains(t, buf.String(), "failed to push data to the cloud")
}
