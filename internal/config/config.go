package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                     string
	DatabaseURL              string
	ChatURL                  string
	ChatKey                  string
	ChatChannel              string
	ChatDialTimeoutSeconds   int
	LogLevel                 string
	LogFormat                string
	MemoryMismatchMillis     int
	MemoryMatchMillis        int
	SessionIdleMinutes       int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		Port:                     "8080",
		ChatChannel:              "default",
		ChatDialTimeoutSeconds:   10,
		LogLevel:                 "info",
		LogFormat:                "console",
		MemoryMismatchMillis:     1000,
		MemoryMatchMillis:        500,
		SessionIdleMinutes:       30,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

// Load reads the configuration from the environment on top of Default.
func Load() Config {
	def := Default()
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", def.Port)
	v.SetDefault("CHAT_CHANNEL", def.ChatChannel)
	v.SetDefault("CHAT_DIAL_TIMEOUT_SECONDS", def.ChatDialTimeoutSeconds)
	v.SetDefault("LOG_LEVEL", def.LogLevel)
	v.SetDefault("LOG_FORMAT", def.LogFormat)
	v.SetDefault("MEMORY_MISMATCH_MS", def.MemoryMismatchMillis)
	v.SetDefault("MEMORY_MATCH_MS", def.MemoryMatchMillis)
	v.SetDefault("SESSION_IDLE_MINUTES", def.SessionIdleMinutes)
	v.SetDefault("DB_MAX_OPEN_CONNS", def.DBMaxOpenConns)
	v.SetDefault("DB_MAX_IDLE_CONNS", def.DBMaxIdleConns)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", def.DBConnMaxLifetimeSeconds)
	v.SetDefault("DB_CONN_MAX_IDLE_SECONDS", def.DBConnMaxIdleTimeSeconds)

	cfg := Config{
		Port:                     v.GetString("PORT"),
		DatabaseURL:              v.GetString("DATABASE_URL"),
		ChatURL:                  v.GetString("CHAT_URL"),
		ChatKey:                  v.GetString("CHAT_KEY"),
		ChatChannel:              v.GetString("CHAT_CHANNEL"),
		ChatDialTimeoutSeconds:   positive(v.GetInt("CHAT_DIAL_TIMEOUT_SECONDS"), def.ChatDialTimeoutSeconds),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		LogFormat:                v.GetString("LOG_FORMAT"),
		MemoryMismatchMillis:     positive(v.GetInt("MEMORY_MISMATCH_MS"), def.MemoryMismatchMillis),
		MemoryMatchMillis:        positive(v.GetInt("MEMORY_MATCH_MS"), def.MemoryMatchMillis),
		SessionIdleMinutes:       positive(v.GetInt("SESSION_IDLE_MINUTES"), def.SessionIdleMinutes),
		DBMaxOpenConns:           positive(v.GetInt("DB_MAX_OPEN_CONNS"), def.DBMaxOpenConns),
		DBMaxIdleConns:           positive(v.GetInt("DB_MAX_IDLE_CONNS"), def.DBMaxIdleConns),
		DBConnMaxLifetimeSeconds: positive(v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS"), def.DBConnMaxLifetimeSeconds),
		DBConnMaxIdleTimeSeconds: positive(v.GetInt("DB_CONN_MAX_IDLE_SECONDS"), def.DBConnMaxIdleTimeSeconds),
	}
	if cfg.ChatChannel == "" {
		cfg.ChatChannel = def.ChatChannel
	}
	return cfg
}

func positive(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func (c Config) MismatchDelay() time.Duration {
	return time.Duration(c.MemoryMismatchMillis) * time.Millisecond
}

func (c Config) MatchDelay() time.Duration {
	return time.Duration(c.MemoryMatchMillis) * time.Millisecond
}

func (c Config) ChatDialTimeout() time.Duration {
	return time.Duration(c.ChatDialTimeoutSeconds) * time.Second
}

func (c Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}
