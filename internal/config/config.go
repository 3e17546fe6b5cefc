package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	BotToken    string
	DatabaseURL string
	RedisAddr   string // optional; empty disables the loan view cache

	// PasswordHash is the sha256 hex digest of the shared access password.
	PasswordHash string

	RateMaxAttempts int
	RateWindow      time.Duration
}

func MustLoad() Config {
	bt := os.Getenv("BOT_TOKEN")
	if bt == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	pw := os.Getenv("BOT_PASSWORD")
	if pw == "" {
		log.Fatal("BOT_PASSWORD is required (sha256 hex of the access password)")
	}

	maxAttempts := 5
	if v := os.Getenv("RATE_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("RATE_MAX_ATTEMPTS invalid: %q", v)
		}
		maxAttempts = n
	}

	windowMin := 15
	if v := os.Getenv("RATE_WINDOW_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("RATE_WINDOW_MINUTES invalid: %q", v)
		}
		windowMin = n
	}

	return Config{
		BotToken:        bt,
		DatabaseURL:     dsn,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		PasswordHash:    pw,
		RateMaxAttempts: maxAttempts,
		RateWindow:      time.Duration(windowMin) * time.Minute,
	}
}
