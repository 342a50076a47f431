package logger

import (
	"log/slog"
	"os"
	"strings"

	"codMarket/domain"
)

var log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Init configures the process-wide logger. Production emits JSON, every other
// environment gets human readable text.
func Init(environment string) {
	switch strings.ToLower(environment) {
	case "production", "prod":
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "test":
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	slog.SetDefault(log)
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// Failure logs a failed operation. Rejections of the request go to Warn,
// everything else to Error.
func Failure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if domain.IsRejection(err) {
		log.Warn(msg, args...)
		return
	}
	log.Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}
