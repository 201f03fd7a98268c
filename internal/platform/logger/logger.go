package logger

import (
	"log/slog"
	"os"
)

// New returns a slog logger: JSON in production for log aggregation, text
// elsewhere for readability.
func New(production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
