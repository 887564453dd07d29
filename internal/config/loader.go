package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the chart service.
type Config struct {
	HTTPAddr   string
	SQLiteDSN  string
	SessionTTL time.Duration
	LogLevel   slog.Level
}

// Load seeds the process environment from a .env file when one exists,
// then parses the configuration values from the environment.
//
// Every field carries a default so a bare environment starts a working
// service; set values are validated and rejected with localized error
// messages.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("環境設定ファイルの読み込みに失敗しました: %w", err)
	}

	cfg := Config{
		HTTPAddr:   ":8080",
		SQLiteDSN:  "file:gantt.db",
		SessionTTL: 24 * time.Hour,
		LogLevel:   slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if addr := strings.TrimSpace(os.Getenv("GANTT_HTTP_ADDR")); addr != "" {
		cfg.HTTPAddr = addr
	}

	if dsn := strings.TrimSpace(os.Getenv("GANTT_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("GANTT_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "GANTT_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if levelValue := strings.TrimSpace(os.Getenv("GANTT_LOG_LEVEL")); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "GANTT_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
