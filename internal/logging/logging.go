// Package logging builds the zerolog logger used by dsync commands.
//
// Human output goes to stderr through a console writer without timestamps
// ("INF Everything is up to date."). When a log file is configured, the same
// events are also written as JSON lines to a size-rotated file.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Out receives console output; defaults to os.Stderr
	Out io.Writer

	// Verbose enables debug level
	Verbose bool

	// NoColor disables ANSI colors in console output
	NoColor bool

	// File, if set, receives JSON logs rotated by lumberjack
	File string
}

// New returns a logger for the given options. The returned closer flushes
// and closes the log file, if any.
func New(opts Options) (zerolog.Logger, io.Closer) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	console := zerolog.ConsoleWriter{
		Out:          out,
		NoColor:      opts.NoColor,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}

	var w io.Writer = console
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	return zerolog.New(w).Level(level(opts)).With().Timestamp().Logger(), closer
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func level(opts Options) zerolog.Level {
	if opts.Verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
