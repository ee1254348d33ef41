package cli

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/pypack-labs/pypack/internal/branding"
)

// newLogger returns the process logger. An unknown level name falls back to
// info and is reported once.
func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: branding.CLIName()})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
