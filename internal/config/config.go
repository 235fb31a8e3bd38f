// Package config reads the settings of the todoes and todoesd programs from the environment, after loading
// any .env files.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the settings of both programs; each uses the fields it needs.
type Config struct {
	// Base URL of the backend for the client, e.g., http://localhost:8080/api/.
	URL string

	// If set, the client logs requests and responses to this file.
	WireLog string

	// Address and path prefix for the todoesd server.
	Addr   string
	Prefix string

	LogLevel log.Level
}

// Load loads the given .env files (default .env), which may be missing, without overriding variables already
// set, then reads the configuration from the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	level, err := log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return &Config{
		URL:      getEnv("TODOES_URL", "http://localhost:8080/api/"),
		WireLog:  os.Getenv("TODOES_WIRE_LOG"),
		Addr:     getEnv("TODOESD_ADDR", ":8080"),
		Prefix:   getEnv("TODOESD_PREFIX", "/api"),
		LogLevel: level,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
