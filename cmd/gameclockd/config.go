package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration, loaded from YAML with environment
// overrides for the common knobs.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	Storage struct {
		// Backend is one of "memory", "file" or "postgres".
		Backend     string `yaml:"backend"`
		FilePath    string `yaml:"file_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"storage"`

	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.ListenAddr = ":8080"
	cfg.Storage.Backend = "memory"
	cfg.Storage.FilePath = "gameclock.json"
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.SubjectPrefix = "gameclock.events"
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads the YAML config at path. A missing file yields defaults;
// a malformed one is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return applyEnvOverrides(cfg), nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return applyEnvOverrides(cfg), nil
}

func applyEnvOverrides(cfg Config) Config {
	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.FilePath = getEnv("STORAGE_FILE_PATH", cfg.Storage.FilePath)
	cfg.Storage.PostgresDSN = getEnv("POSTGRES_DSN", cfg.Storage.PostgresDSN)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", cfg.NATS.SubjectPrefix)
	return cfg
}
