package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/lib/logger/slogpretty"
)

// Setup picks the handler for the environment: coloured text locally,
// JSON everywhere else.
func Setup(env string) *slog.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, out io.Writer) *slog.Logger {
	switch env {
	case config.EnvLocal:
		opts := slogpretty.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}
		return slog.New(opts.NewPrettyHandler(out))
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
