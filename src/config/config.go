package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// DBPath is the readings database opened at startup. Empty means wait for the user to pick one.
	DBPath string
	// SQLDebug logs every statement sent to SQLite at debug level.
	SQLDebug bool
}

// Load applies the given .env files (missing files are skipped) and then reads the environment.
// Variables already present in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return LoadFromEnv()
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := ParseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	dbPath := strings.TrimSpace(os.Getenv("LEITURA_DB"))

	sqlDebug := false
	if s := strings.TrimSpace(os.Getenv("LEITURA_SQL_DEBUG")); s != "" {
		sqlDebug, err = strconv.ParseBool(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LEITURA_SQL_DEBUG %q: %w", s, err)
		}
	}

	return Config{
		AppEnv:   appEnv,
		LogLevel: level,
		DBPath:   dbPath,
		SQLDebug: sqlDebug,
	}, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
