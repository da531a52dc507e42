package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/interviewsim/internal/ai"
)

// Config is the root configuration for interviewsim.
type Config struct {
	Server       ServerConfig
	Provider     ProviderConfig
	Usage        UsageConfig
	Notification NotificationConfig
}

// ServerConfig controls the web form.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// ProviderConfig controls the hosted model backend.
type ProviderConfig struct {
	Type        string        // "openai" (any OpenAI-compatible endpoint), "gemini" or "echo"
	BaseURL     string        // defaults to Groq's OpenAI-compatible endpoint
	APIKey      string        // optional default credential for the CLI and TUI; the web form supplies its own
	Models      []string      // ordered preference list
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // per-invocation timeout
}

// UsageConfig controls the append-only usage log.
type UsageConfig struct {
	Backend     string // "sqlite", "postgres" or "none"
	Path        string // sqlite database file
	DatabaseURL string // postgres connection URL
	User        string // value written to the User column
}

// NotificationConfig controls which run notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultAddr      = ":8501"
	defaultUsagePath = "usage.db"
	defaultUsageUser = "public_user"
)

// DefaultModels is the model preference list used when none is configured.
var DefaultModels = []string{"llama-3.3-70b-versatile", "openai/gpt-oss-20b"}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Server       rawServerConfig    `yaml:"server"`
	Provider     rawProviderConfig  `yaml:"provider"`
	Usage        rawUsageConfig     `yaml:"usage"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type rawProviderConfig struct {
	Type        string   `yaml:"type"`
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Models      []string `yaml:"models"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Timeout     string   `yaml:"timeout"`
}

type rawUsageConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
	User        string `yaml:"user"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg, err := parse(rawConfig{})
	if err != nil {
		// The zero raw config always parses.
		panic(err)
	}
	return cfg
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := parse(raw)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func parse(raw rawConfig) (*Config, error) {
	var err error

	shutdownTimeout := 10 * time.Second // default
	if raw.Server.ShutdownTimeout != "" {
		shutdownTimeout, err = time.ParseDuration(raw.Server.ShutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse server.shutdown_timeout %q: %w", raw.Server.ShutdownTimeout, err)
		}
	}

	timeout := 90 * time.Second // default
	if raw.Provider.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Provider.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse provider.timeout %q: %w", raw.Provider.Timeout, err)
		}
	}

	temperature := 0.1
	if raw.Provider.Temperature != nil {
		temperature = *raw.Provider.Temperature
	}

	providerType := strings.ToLower(raw.Provider.Type)
	if providerType == "" {
		providerType = "openai"
	}

	baseURL := raw.Provider.BaseURL
	if baseURL == "" && providerType == "openai" {
		baseURL = ai.DefaultOpenAIBaseURL
	}

	models := raw.Provider.Models
	if len(models) == 0 {
		models = append([]string(nil), DefaultModels...)
	}

	backend := strings.ToLower(raw.Usage.Backend)
	if backend == "" {
		backend = "sqlite"
	}
	usagePath := raw.Usage.Path
	if usagePath == "" {
		usagePath = defaultUsagePath
	}
	usageUser := raw.Usage.User
	if usageUser == "" {
		usageUser = defaultUsageUser
	}

	addr := raw.Server.Addr
	if addr == "" {
		addr = defaultAddr
	}

	notification := raw.Notification
	if notification.Type == "" {
		notification.Type = "log"
	}

	return &Config{
		Server: ServerConfig{
			Addr:            addr,
			ShutdownTimeout: shutdownTimeout,
		},
		Provider: ProviderConfig{
			Type:        providerType,
			BaseURL:     baseURL,
			APIKey:      raw.Provider.APIKey,
			Models:      models,
			Temperature: temperature,
			MaxTokens:   raw.Provider.MaxTokens,
			Timeout:     timeout,
		},
		Usage: UsageConfig{
			Backend:     backend,
			Path:        usagePath,
			DatabaseURL: raw.Usage.DatabaseURL,
			User:        usageUser,
		},
		Notification: notification,
	}, nil
}

func validate(cfg *Config) error {
	switch cfg.Provider.Type {
	case "openai", "gemini", "echo":
	default:
		return fmt.Errorf("provider.type must be one of openai, gemini, echo; got %q", cfg.Provider.Type)
	}

	for i, m := range cfg.Provider.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("provider.models[%d] is empty", i)
		}
	}

	if cfg.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %v", cfg.Provider.Timeout)
	}

	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		return fmt.Errorf("provider.temperature must be between 0 and 2, got %v", cfg.Provider.Temperature)
	}

	if cfg.Provider.MaxTokens < 0 {
		return fmt.Errorf("provider.max_tokens must not be negative, got %d", cfg.Provider.MaxTokens)
	}

	switch cfg.Usage.Backend {
	case "sqlite", "none":
	case "postgres":
		if cfg.Usage.DatabaseURL == "" {
			return fmt.Errorf("usage.database_url is required when usage.backend is \"postgres\"")
		}
	default:
		return fmt.Errorf("usage.backend must be one of sqlite, postgres, none; got %q", cfg.Usage.Backend)
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	return nil
}
