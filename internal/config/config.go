package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "10m" parse
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Strapi StrapiConfig `yaml:"strapi"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin,omitempty"`
}

// StrapiConfig represents the remote prompt store configuration.
// The bearer token always comes from the STRAPI_TOKEN environment
// variable so it never lands in a config file.
type StrapiConfig struct {
	URL         string   `yaml:"url"`
	TemplateTTL Duration `yaml:"template_ttl"`
}

// CacheConfig represents the answer cache configuration
type CacheConfig struct {
	AnswerTTL     Duration `yaml:"answer_ttl"`
	SweepSchedule string   `yaml:"sweep_schedule"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8989",
		},
		Strapi: StrapiConfig{
			URL:         os.Getenv("STRAPI_URL"),
			TemplateTTL: Duration(10 * time.Minute),
		},
		Cache: CacheConfig{
			AnswerTTL:     Duration(24 * time.Hour),
			SweepSchedule: "@every 10m",
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load loads configuration from a yaml file, layered over defaults.
// A .env file in the working directory is loaded first so engine
// credentials and the Strapi token are available from the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Strapi.URL == "" {
		cfg.Strapi.URL = os.Getenv("STRAPI_URL")
	}
	return cfg, nil
}

// Save writes the configuration to a yaml file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".promptly", "config.yaml")
}

// StrapiToken returns the bearer token for the prompt store
func StrapiToken() string {
	return os.Getenv("STRAPI_TOKEN")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
