package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver string
	DBDSN    string

	RedisAddr string // empty: in-process session store

	SessionSecret string
	SessionTTL    time.Duration
}

func FromEnv() Config {
	return Config{
		// Empty DB_DRIVER is a routine state: the quiz store falls back to
		// its in-process backend.
		DBDriver:      os.Getenv("DB_DRIVER"),
		DBDSN:         os.Getenv("DB_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		SessionSecret: envOr("SESSION_SECRET", "dev-secret-change-me"),
		SessionTTL:    envDuration("SESSION_TTL_HOURS", 30*24*time.Hour),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	hours, err := strconv.Atoi(v)
	if err != nil || hours <= 0 {
		return def
	}
	return time.Duration(hours) * time.Hour
}
