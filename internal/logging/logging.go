// Package logging configures the global zerolog logger. The terminal belongs
// to the UI, so output goes to a file or is discarded.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options describes logger configuration.
type Options struct {
	Level string
	// Path is the log file. Empty discards output.
	Path  string
	Human bool
	// Writer overrides Path when set.
	Writer io.Writer
}

// Setup installs the global logger and returns a function closing the log
// file, if any.
func Setup(opts Options) (func() error, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	closer := func() error { return nil }
	writer := opts.Writer
	if writer == nil {
		if opts.Path == "" {
			writer = io.Discard
		} else {
			if err := os.MkdirAll(filepath.Dir(opts.Path), 0750); err != nil {
				return nil, fmt.Errorf("log dir: %w", err)
			}
			f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				return nil, fmt.Errorf("open log: %w", err)
			}
			writer = f
			closer = f.Close
		}
	}

	output := writer
	if opts.Human {
		console := zerolog.NewConsoleWriter()
		console.Out = writer
		console.NoColor = true
		console.TimeFormat = time.RFC3339
		output = console
	}

	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	return closer, nil
}
