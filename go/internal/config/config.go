// Package config reads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the settings shared by every command.
type Config struct {
	Port      int
	LogLevel  string
	StaticDir string

	PhaseFile string // empty: built-in storm phases
	BossFile  string // empty: built-in boss catalog

	ShareTitle string
	PublicURL  string

	NATSURL           string // empty: log events instead of publishing
	NATSSubjectPrefix string

	MetricsEnabled bool
	TickInterval   time.Duration
}

// LoadDotEnv loads a .env file if it exists.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}
}

// NewConfigFromEnv reads NIGHTREIGN_* and related variables (with defaults).
func NewConfigFromEnv() Config {
	return Config{
		Port:              getEnvAsInt("PORT", 8080),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StaticDir:         getEnv("STATIC_DIR", ""),
		PhaseFile:         getEnv("PHASE_FILE", ""),
		BossFile:          getEnv("BOSS_FILE", ""),
		ShareTitle:        getEnv("SHARE_TITLE", ""),
		PublicURL:         getEnv("PUBLIC_URL", ""),
		NATSURL:           getEnv("NATS_URL", ""),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "nightreign"),
		MetricsEnabled:    getEnvAsBool("METRICS_ENABLED", true),
		TickInterval:      getEnvAsDuration("TICK_INTERVAL", time.Second),
	}
}

// SetupLogging points the global logger at the console and applies level.
func SetupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid integer setting")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid boolean setting")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid duration setting")
	}
	return defaultValue
}
