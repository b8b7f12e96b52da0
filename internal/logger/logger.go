package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/fundflow-lending-core/internal/config"
)

// NewLogger builds the JSON slog logger shared by the API gateway and the
// loan event processor. The level comes from configuration; source locations
// are only attached at debug level.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	logger.Info("logger initialized", "level", level)

	return logger
}
