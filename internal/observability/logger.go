// Package observability wires structured logging and Prometheus metrics for
// the explorer service.
package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/config"
)

// NewLogger builds the service logger from config. LOG_FORMAT selects json
// (the default, for log shippers) or text (for terminals); LOG_LEVEL maps
// onto slog levels with info as the fallback.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
