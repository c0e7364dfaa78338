// internal/config/config.go
//
// Environment-driven configuration for the server and the terminal client.
// A .env file in the working directory is loaded first when present
// (joho/godotenv); real environment variables win over it.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/robalobadob/unscramble/internal/game"
)

// Config holds every tunable read from the environment.
type Config struct {
	Port         string
	LogLevel     zerolog.Level
	DBPath       string
	JWTSecret    string
	JWTTTL       time.Duration
	CookieName   string
	ClientOrigin string
	Production   bool
	DailySalt    string
	WordsFile    string
	LogFile      string // terminal client only

	MaxRounds     int
	ScoreIncrease int
	SessionIdle   time.Duration
}

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	c := Config{
		Port:         getEnv("PORT", "5175"),
		DBPath:       getEnv("DB_PATH", "./data/app.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		CookieName:   getEnv("COOKIE_NAME", "unscramble_token"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("APP_ENV") == "production",
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		WordsFile:    os.Getenv("WORDS_FILE"),
		LogFile:      os.Getenv("UNSCRAMBLE_LOG"),
	}

	lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	c.LogLevel = lvl

	days, err := envInt("JWT_EXPIRES_DAYS", 14)
	if err != nil {
		return Config{}, err
	}
	c.JWTTTL = time.Duration(days) * 24 * time.Hour

	if c.MaxRounds, err = envInt("MAX_ROUNDS", game.DefaultMaxRounds); err != nil {
		return Config{}, err
	}
	if c.ScoreIncrease, err = envInt("SCORE_INCREASE", game.DefaultScoreIncrease); err != nil {
		return Config{}, err
	}
	idle, err := envInt("SESSION_IDLE_MINUTES", 60)
	if err != nil {
		return Config{}, err
	}
	c.SessionIdle = time.Duration(idle) * time.Minute

	return c, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses a positive integer variable, falling back to def when unset.
func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: want a positive integer, got %q", k, v)
	}
	return n, nil
}
