// Package config resolves process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sandeepkv93/remindme/internal/model"
)

var ErrMissingBotToken = errors.New("config: TELEGRAM_BOT_TOKEN is required")

type Config struct {
	BotToken        string
	DBPath          string
	DatabaseURL     string
	Timezone        string
	DigestTime      string
	SchedulerBuffer int
	SupersedeTimers bool
	Port            int
	RedisAddr       string
	SessionTTL      time.Duration
	ConsoleOwner    int64
	ConsoleLogPath  string
	LogLevel        slog.Level
}

func Default() Config {
	return Config{
		DBPath:          "tasks.db",
		Timezone:        "Asia/Almaty",
		DigestTime:      "07:30",
		SchedulerBuffer: 64,
		Port:            8080,
		SessionTTL:      30 * time.Minute,
		ConsoleOwner:    1,
		LogLevel:        slog.LevelInfo,
	}
}

// Load reads the given .env files (missing files are ignored) and then
// applies the environment on top of Default. Variables already set in the
// environment win over the file.
func Load(files ...string) (Config, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}
	return FromEnv(Default())
}

func FromEnv(base Config) (Config, error) {
	cfg := base
	if v, ok := getEnvString("TELEGRAM_BOT_TOKEN"); ok {
		cfg.BotToken = v
	}
	if v, ok := getEnvString("DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := getEnvString("TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvString("REMINDME_DIGEST_TIME"); ok {
		if _, err := model.ParseDailyAt(v, time.UTC); err != nil {
			return Config{}, fmt.Errorf("REMINDME_DIGEST_TIME: %w", err)
		}
		cfg.DigestTime = v
	}
	if v, ok := getEnvInt("REMINDME_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("REMINDME_SUPERSEDE_TIMERS"); ok {
		cfg.SupersedeTimers = v
	}
	if v, ok := getEnvInt("PORT"); ok && v > 0 {
		cfg.Port = v
	}
	if v, ok := getEnvString("REDIS_ADDR"); ok {
		cfg.RedisAddr = v
	}
	if v, ok := getEnvString("REMINDME_SESSION_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("REMINDME_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	if v, ok := getEnvInt("REMINDME_CONSOLE_OWNER"); ok && v > 0 {
		cfg.ConsoleOwner = int64(v)
	}
	if v, ok := getEnvString("REMINDME_CONSOLE_LOG"); ok {
		cfg.ConsoleLogPath = v
	}
	if v, ok := getEnvString("REMINDME_LOG_LEVEL"); ok {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("REMINDME_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// Location resolves Timezone. An empty zone means UTC.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Digest is the daily digest clock time in loc.
func (c Config) Digest(loc *time.Location) (model.DailyAt, error) {
	return model.ParseDailyAt(c.DigestTime, loc)
}

// RequireBotToken reports ErrMissingBotToken when the chat transport cannot
// start.
func (c Config) RequireBotToken() error {
	if c.BotToken == "" {
		return ErrMissingBotToken
	}
	return nil
}

func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// FrameworkErrorsOnly reports whether the application framework should log
// errors only. Its logger has info and error levels; anything from warn up
// maps to error.
func (c Config) FrameworkErrorsOnly() bool {
	return c.LogLevel >= slog.LevelWarn
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
