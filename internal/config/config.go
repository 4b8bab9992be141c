// Package config loads pipeline configuration from a YAML file and the
// environment. Environment variables override file values; required settings
// fail fast at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full pipeline configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Temporal   TemporalConfig   `yaml:"temporal"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Language   string           `yaml:"language"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // gin mode: debug or release
}

// StorageConfig configures the blob store.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
}

// DatabaseConfig configures the recording record store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

// TemporalConfig configures the workflow orchestrator. An empty HostPort
// disables it and the pipeline processes recordings synchronously.
type TemporalConfig struct {
	HostPort  string `yaml:"host_port"`
	Namespace string `yaml:"namespace"`
	TaskQueue string `yaml:"task_queue"`
}

// OpenAIConfig holds the transcription and summarization credentials.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// SummarizerConfig bounds the summary generation input.
type SummarizerConfig struct {
	Budget int `yaml:"budget"`
}

// LoadEnv loads variables from a .env file when one exists. Missing files are
// fine; variables may be set system-wide.
func LoadEnv() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// Load reads the YAML file at path (optional), applies environment overrides
// and validates required settings.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(os.ExpandEnv(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Mode: "release"},
		Storage: StorageConfig{
			Endpoint: "localhost:9000",
			Bucket:   "koenote-audio",
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "koenote.db"},
		Temporal: TemporalConfig{Namespace: "default"},
		Summarizer: SummarizerConfig{Budget: 4000},
		Language:   "ja",
	}
}

func (c *Config) applyEnv() {
	setString(&c.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Storage.Bucket, "KOENOTE_BUCKET")
	setBool(&c.Storage.UseSSL, "MINIO_USE_SSL")

	setString(&c.Database.Driver, "KOENOTE_DB_DRIVER")
	setString(&c.Database.DSN, "KOENOTE_DB_DSN")

	setString(&c.Temporal.HostPort, "TEMPORAL_HOST")
	setString(&c.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	setString(&c.Temporal.TaskQueue, "TEMPORAL_TASK_QUEUE")

	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")

	setString(&c.Language, "KOENOTE_LANGUAGE")
	setInt(&c.Server.Port, "KOENOTE_PORT")
	setString(&c.Server.Mode, "GIN_MODE")
	setInt(&c.Summarizer.Budget, "KOENOTE_SUMMARY_BUDGET")
}

func (c *Config) validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if !strings.HasPrefix(c.OpenAI.APIKey, "sk-") {
		return fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Summarizer.Budget <= 0 {
		return fmt.Errorf("summarizer budget must be positive, got %d", c.Summarizer.Budget)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}
