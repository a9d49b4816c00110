package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variable names read by FromEnv.
const (
	EnvAPIKey      = "VELOCITY_API_KEY"
	EnvBaseURL     = "VELOCITY_BASE_URL"
	EnvModel       = "VELOCITY_MODEL"
	EnvTemperature = "VELOCITY_TEMPERATURE"
	EnvTimeout     = "VELOCITY_TIMEOUT"
	EnvEndpoint    = "VELOCITY_ENDPOINT"
	EnvPromptFile  = "VELOCITY_PROMPT_FILE"
	EnvCatalogFile = "VELOCITY_CATALOG_FILE"
	EnvVerbose     = "VELOCITY_VERBOSE"
)

const (
	DefaultBaseURL     = "https://chat.velocity.online/api"
	DefaultModel       = "gpt-5.2"
	DefaultTemperature = 0.2
	DefaultTimeout     = 60 * time.Second
	DefaultPromptPath  = "prompt.txt"
	DefaultCatalogPath = "products.json"
)

// ErrMissingAPIKey is wrapped by the ConfigError returned when no API key is configured.
var ErrMissingAPIKey = errors.New("API key is not set")

// ConfigError reports a missing or malformed configuration value.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds all runtime configuration for the agent. It is resolved once
// at startup and passed by value afterwards.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	PreferredEndpoint string

	PromptPath  string
	CatalogPath string
	Verbose     bool
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
		PromptPath:  DefaultPromptPath,
		CatalogPath: DefaultCatalogPath,
	}
}

// FromEnv builds a Config from lookup, which is usually os.LookupEnv.
// Unset or blank variables fall back to defaults; the API key is required.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := DefaultConfig()
	cfg.APIKey = get(EnvAPIKey)
	if v := get(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := get(EnvModel); v != "" {
		cfg.Model = v
	}
	if v := get(EnvTemperature); v != "" {
		temperature, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, &ConfigError{Key: EnvTemperature, Err: err}
		}
		cfg.Temperature = temperature
	}
	if v := get(EnvTimeout); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, &ConfigError{Key: EnvTimeout, Err: err}
		}
		if seconds <= 0 {
			return Config{}, &ConfigError{Key: EnvTimeout, Err: fmt.Errorf("must be positive, got %d", seconds)}
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}
	cfg.PreferredEndpoint = get(EnvEndpoint)
	if v := get(EnvPromptFile); v != "" {
		cfg.PromptPath = v
	}
	if v := get(EnvCatalogFile); v != "" {
		cfg.CatalogPath = v
	}
	if v := get(EnvVerbose); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, &ConfigError{Key: EnvVerbose, Err: err}
		}
		cfg.Verbose = verbose
	}

	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.PreferredEndpoint = strings.TrimSpace(cfg.PreferredEndpoint)
	cfg.PromptPath = strings.TrimSpace(cfg.PromptPath)
	cfg.CatalogPath = strings.TrimSpace(cfg.CatalogPath)

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// Validate reports the first fatal problem with cfg.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &ConfigError{Key: EnvAPIKey, Err: ErrMissingAPIKey}
	}
	return nil
}
