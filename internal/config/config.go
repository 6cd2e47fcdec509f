// Package config loads command-line tool settings from a .env file and
// the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds settings shared by the clausewitz commands. Flags
// override these values.
type Config struct {
	Workers       int
	CachePath     string
	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

// Load reads the given .env files, or ./.env when none are given, and
// then the environment. A missing default .env is not an error; a
// missing explicitly named file is.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, err
	}

	return &Config{
		Workers:       getEnvInt("CLAUSEWITZ_WORKERS", runtime.NumCPU()),
		CachePath:     getEnv("CLAUSEWITZ_CACHE", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
