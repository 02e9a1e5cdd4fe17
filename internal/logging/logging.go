package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New creates the root logger. Unknown levels fall back to info.
func New(level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "snapdiff",
		Level:  lvl,
		Output: w,
	})
}

// Component-specific loggers

// Resolver returns a logger for primary key naming decisions
func Resolver(l hclog.Logger) hclog.Logger {
	return l.Named("resolver")
}

// Snapshot returns a logger for snapshot building
func Snapshot(l hclog.Logger) hclog.Logger {
	return l.Named("snapshot")
}

// DB returns a logger for database operations
func DB(l hclog.Logger) hclog.Logger {
	return l.Named("db")
}
