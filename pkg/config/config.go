package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret signs flash cookies when SESSION_SECRET is unset
const DefaultSessionSecret = "default-secret-key"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cover    CoverConfig
	Session  SessionConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Path          string
	MaxOpenConns  int
	MaxIdleConns  int
	BusyTimeoutMS int
}

// CoverConfig describes the third-party book cover API.
type CoverConfig struct {
	URL           string
	Host          string
	APIKey        string
	LanguageCode  string
	Timeout       time.Duration
	RatePerSecond int
}

type SessionConfig struct {
	Secret string
}

// UsesDefaultSecret reports whether cookies are signed with the built-in secret
func (c SessionConfig) UsesDefaultSecret() bool {
	return c.Secret == DefaultSessionSecret
}

type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return FromEnv()
}

// FromEnv builds a Config from the current environment only. Numeric
// variables that are set but unparseable are reported together.
func FromEnv() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:            env.get("PORT", "8080"),
			Mode:            env.get("GIN_MODE", "release"),
			ReadTimeout:     env.seconds("READ_TIMEOUT", 15),
			WriteTimeout:    env.seconds("WRITE_TIMEOUT", 15),
			ShutdownTimeout: env.seconds("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Path:          env.get("DB_PATH", "./data/library.db"),
			MaxOpenConns:  env.integer("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:  env.integer("DB_MAX_IDLE_CONNS", 5),
			BusyTimeoutMS: env.integer("DB_BUSY_TIMEOUT_MS", 5000),
		},
		Cover: CoverConfig{
			URL:           env.get("COVER_API_URL", "https://book-cover-api2.p.rapidapi.com/api/public/books/v1/cover/url"),
			Host:          env.get("COVER_API_HOST", "book-cover-api2.p.rapidapi.com"),
			APIKey:        env.get("COVER_API_KEY", ""),
			LanguageCode:  env.get("COVER_LANGUAGE", "en"),
			Timeout:       env.seconds("COVER_TIMEOUT", 10),
			RatePerSecond: env.integer("COVER_RATE_PER_SECOND", 5),
		},
		Session: SessionConfig{
			Secret: env.get("SESSION_SECRET", DefaultSessionSecret),
		},
		Log: LogConfig{
			Level:  env.get("LOG_LEVEL", "info"),
			Format: env.get("LOG_FORMAT", "json"),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

// envReader reads environment variables with defaults, collecting parse errors
type envReader struct {
	errs []error
}

// get gets an environment variable or returns a default value
func (e *envReader) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// integer gets an environment variable as integer or returns a default value
func (e *envReader) integer(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return defaultValue
	}
	return intValue
}

func (e *envReader) seconds(key string, defaultValue int) time.Duration {
	return time.Duration(e.integer(key, defaultValue)) * time.Second
}
