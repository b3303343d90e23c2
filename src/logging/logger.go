package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/iafilius/LeituraViewer/src/config"
)

// New builds the process logger writing to stderr. Dev builds get tint's colored handler with
// source locations; anything else logs JSON with version and environment attached.
func New(cfg config.Config, version string, appName string) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg, version, appName)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg config.Config, version string, appName string) *slog.Logger {
	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}

func logf(l slog.Level, format string, args ...interface{}) {
	// Only format when there are args; an already formatted message may carry literal % signs
	// that fmt would turn into %!x(MISSING).
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	slog.Default().Log(context.Background(), l, msg)
}

// Printf-style helpers on the default logger, for host code that builds messages for the status bar.
func Debugf(format string, a ...interface{}) { logf(slog.LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(slog.LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(slog.LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(slog.LevelError, format, a...) }

// TimeTrack logs the duration of a phase at debug level.
func TimeTrack(logger *slog.Logger, start time.Time, label string) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("timing", "phase", label, "took", time.Since(start))
}
