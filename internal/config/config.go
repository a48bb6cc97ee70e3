// Package config provides configuration loading and structs for the Glassroot server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Chat      ChatConfig      `yaml:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// CORSOrigin is sent as Access-Control-Allow-Origin; empty means "*".
	CORSOrigin         string `yaml:"cors_origin"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"` // 0 disables the per-request timeout
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RequestTimeout returns the per-request timeout, zero when disabled.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSecs) * time.Second
}

// StorageConfig holds the relational store location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// Embedding types.
const (
	EmbeddingHTTP = "http"
	EmbeddingMock = "mock"
	EmbeddingNone = "none"
)

// EmbeddingConfig configures the inference binding.
type EmbeddingConfig struct {
	Type              string  `yaml:"type"`
	URL               string  `yaml:"url"`
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MinDimensions     int     `yaml:"min_dimensions"`
	Dimensions        int     `yaml:"dimensions"` // mock embedder only
	CacheSize         int     `yaml:"cache_size"` // 0 disables the embedding cache
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Vector index types.
const (
	IndexMemory   = "memory"
	IndexQdrant   = "qdrant"
	IndexPGVector = "pgvector"
	IndexNone     = "none"
)

// VectorConfig configures the vector index binding.
type VectorConfig struct {
	IndexType string         `yaml:"index_type"`
	IndexPath string         `yaml:"index_path"` // memory index persistence; empty keeps it in memory only
	Qdrant    QdrantConfig   `yaml:"qdrant"`
	PGVector  PGVectorConfig `yaml:"pgvector"`
}

// QdrantConfig holds connection details for a Qdrant collection.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// PGVectorConfig holds connection details for a Postgres table with the vector extension.
type PGVectorConfig struct {
	DSNEnv string `yaml:"dsn_env"`
	Table  string `yaml:"table"`
}

// ChatConfig configures the chat completions client used by "glassroot chat".
type ChatConfig struct {
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
	SettingsPath string `yaml:"settings_path"`
	Referer      string `yaml:"referer"`
	Title        string `yaml:"title"`
	TimeoutSecs  int    `yaml:"timeout_secs"` // 0 leaves streaming unbounded
}

// Load reads and parses the config file at path, applies defaults and environment
// overrides, and expands paths. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ApplyDefaults(&cfg)
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Vector.IndexPath = expandPath(cfg.Vector.IndexPath, configDir)
	cfg.Chat.SettingsPath = expandPath(cfg.Chat.SettingsPath, configDir)
	return &cfg, nil
}

// Save writes the config to path, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Environment variables that override file settings.
const (
	EnvCORSOrigin   = "GLASSROOT_CORS_ORIGIN"
	EnvDatabasePath = "GLASSROOT_DATABASE_PATH"
	EnvEmbeddingURL = "GLASSROOT_EMBEDDING_URL"
	EnvPort         = "GLASSROOT_PORT"
)

// ApplyEnv overrides cfg with any GLASSROOT_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvCORSOrigin); ok {
		cfg.Server.CORSOrigin = v
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv(EnvEmbeddingURL); v != "" {
		cfg.Embedding.URL = v
		if cfg.Embedding.Type == EmbeddingNone {
			cfg.Embedding.Type = EmbeddingHTTP
		}
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		path = path[2:]
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
