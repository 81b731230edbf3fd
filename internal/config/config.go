// Package config loads runtime configuration from environment variables.
// Only JWT_SECRET is mandatory; everything else has a sensible default so the
// service boots with an in-memory store and no external collaborators.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       string // HTTP port to listen on
	JWTSecret  string // secret used to sign bearer tokens
	TokenTTL   time.Duration
	BcryptCost int

	DatabaseURL string // optional; empty means in-memory store
	RedisAddr   string // optional; empty disables Redis rate limiting
	AMQPURL     string // optional; empty disables event publishing

	AuthRateLimit  int           // requests per window per IP on /api/users and /api/auth/login
	AuthRateWindow time.Duration
}

func Load() Config {
	return Config{
		Port:           getenv("PORT", "8000"),
		JWTSecret:      must("JWT_SECRET"),
		TokenTTL:       parseDur(getenv("TOKEN_TTL", "72h")),
		BcryptCost:     atoi(getenv("BCRYPT_COST", "10")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AMQPURL:        os.Getenv("RABBITMQ_URL"),
		AuthRateLimit:  atoi(getenv("AUTH_RATE_LIMIT", "20")),
		AuthRateWindow: parseDur(getenv("AUTH_RATE_WINDOW", "1m")),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q", s)
	}
	return n
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration value %q", s)
	}
	return d
}
