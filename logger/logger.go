package logger

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New returns the process logger. Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		ReportCaller:    lvl == log.DebugLevel,
	})
}
