// Package config reads taskdeck settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/idilsaglam/taskdeck/internal/catalog"
	"github.com/idilsaglam/taskdeck/internal/store/redisstore"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	DataDir        string
	Backend        string
	RedisURL       string
	RedisPrefix    string
	CatalogBaseURL string
	HashPasswords  bool
	LogLevel       log.Level
}

// LoadEnvFile merges a dotenv file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Backend:        BackendFile,
		RedisPrefix:    redisstore.DefaultPrefix,
		CatalogBaseURL: catalog.DefaultBaseURL,
		LogLevel:       log.WarnLevel,
	}

	if v := os.Getenv("TASKDECK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("home: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".taskdeck")
	}

	if v := os.Getenv("TASKDECK_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	switch cfg.Backend {
	case BackendFile:
	case BackendRedis:
		cfg.RedisURL = os.Getenv("TASKDECK_REDIS_URL")
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("TASKDECK_REDIS_URL is required for the redis backend")
		}
	default:
		return Config{}, fmt.Errorf("invalid TASKDECK_BACKEND %q", cfg.Backend)
	}
	if v, ok := os.LookupEnv("TASKDECK_REDIS_PREFIX"); ok {
		cfg.RedisPrefix = v
	}

	if v := os.Getenv("TASKDECK_CATALOG_URL"); v != "" {
		cfg.CatalogBaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("TASKDECK_HASH_PASSWORDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TASKDECK_HASH_PASSWORDS: %w", err)
		}
		cfg.HashPasswords = b
	}

	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		lvl, err := log.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TASKDECK_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		cfg.LogLevel = log.DebugLevel
	}
	return cfg, nil
}
