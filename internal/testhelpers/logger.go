package testhelpers

import (
	"io"
	"log/slog"

	"github.com/gpossst/fitplan/internal/logging"
)

// NewLogger creates a new debug logger with the given log sink such as testhelpers.NewWriter.
func NewLogger(logSink io.Writer) *slog.Logger {
	return logging.NewLogger(logSink, slog.LevelDebug)
}
