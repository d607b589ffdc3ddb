// Package logging sets up the process logger. The TUI owns the terminal, so
// diagnostics go to a file (or nowhere).
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger appending to path and a close func. An empty path
// yields a disabled logger.
func New(path string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}
	logger := zerolog.New(file).With().Timestamp().Logger()
	return logger, func() { _ = file.Close() }, nil
}
