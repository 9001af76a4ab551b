package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all supportbot configuration.
type Config struct {
	// Chat widget / CLI client
	Client ClientConfig `yaml:"client"`

	// FAQ backend
	Server ServerConfig `yaml:"server"`

	// Embedding and completion models
	LLM LLMConfig `yaml:"llm"`

	Logging LoggingConfig `yaml:"logging"`

	UI UIConfig `yaml:"ui"`
}

// ClientConfig configures the chat client.
type ClientConfig struct {
	Endpoint   string `yaml:"endpoint" env:"SUPPORTBOT_ENDPOINT"`
	BusinessID int    `yaml:"business_id" env:"SUPPORTBOT_BUSINESS_ID"`
	// Empty means no timeout: a send waits until the server answers.
	Timeout string `yaml:"timeout" env:"SUPPORTBOT_CLIENT_TIMEOUT"`
}

// ServerConfig configures the FAQ backend.
type ServerConfig struct {
	Host                string   `yaml:"host" env:"SUPPORTBOT_HOST"`
	Port                int      `yaml:"port" env:"SUPPORTBOT_PORT"`
	Database            string   `yaml:"database" env:"SUPPORTBOT_DATABASE"`
	SimilarityThreshold float64  `yaml:"similarity_threshold" env:"SUPPORTBOT_SIMILARITY_THRESHOLD"`
	MaxConnections      int      `yaml:"max_connections" env:"SUPPORTBOT_MAX_CONNECTIONS"` // 0 = unlimited
	AllowedOrigins      []string `yaml:"allowed_origins" env:"SUPPORTBOT_ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeout      string   `yaml:"request_timeout" env:"SUPPORTBOT_REQUEST_TIMEOUT"`
	ShutdownTimeout     string   `yaml:"shutdown_timeout" env:"SUPPORTBOT_SHUTDOWN_TIMEOUT"`
}

// LLMConfig configures the Gemini client used by the backend.
type LLMConfig struct {
	APIKey         string `yaml:"api_key" env:"SUPPORTBOT_LLM_API_KEY"`
	Model          string `yaml:"model" env:"SUPPORTBOT_LLM_MODEL"`
	EmbeddingModel string `yaml:"embedding_model" env:"SUPPORTBOT_EMBEDDING_MODEL"`
	Timeout        string `yaml:"timeout" env:"SUPPORTBOT_LLM_TIMEOUT"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"SUPPORTBOT_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"SUPPORTBOT_LOG_FORMAT"` // json, console
	File   string `yaml:"file" env:"SUPPORTBOT_LOG_FILE"`
}

// UIConfig configures the terminal widget.
type UIConfig struct {
	Theme       string `yaml:"theme" env:"SUPPORTBOT_THEME"` // light, dark, auto
	StartHidden bool   `yaml:"start_hidden" env:"SUPPORTBOT_START_HIDDEN"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Endpoint:   "http://localhost:8000/chat",
			BusinessID: 3,
		},

		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8000,
			Database:            "supportbot.db",
			SimilarityThreshold: 0.80,
			MaxConnections:      256,
			AllowedOrigins:      []string{"*"},
			RequestTimeout:      "60s",
			ShutdownTimeout:     "5s",
		},

		LLM: LLMConfig{
			Model:          "gemini-2.5-flash",
			EmbeddingModel: "gemini-embedding-001",
			Timeout:        "60s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   "supportbot.log",
		},

		UI: UIConfig{
			Theme: "light",
		},
	}
}

// DefaultDir returns ~/.supportbot, or .supportbot when the home directory
// is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".supportbot"
	}
	return filepath.Join(home, ".supportbot")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. The provider
// keys are read first so SUPPORTBOT_LLM_API_KEY can still win.
func (c *Config) applyEnvOverrides() error {
	for _, name := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			c.LLM.APIKey = key
		}
	}

	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// GetClientTimeout returns the per-send timeout. Zero means none.
func (c *Config) GetClientTimeout() time.Duration {
	return parseDuration(c.Client.Timeout, 0)
}

// GetRequestTimeout returns the backend per-request timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.Server.RequestTimeout, 60*time.Second)
}

// GetShutdownTimeout returns how long the backend drains on shutdown.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 5*time.Second)
}

// GetLLMTimeout returns the timeout for one embedding or completion call.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 60*time.Second)
}

// Addr returns the backend listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"light", "dark", "auto"}

// Validate validates the configuration. It does not require an API key;
// see RequireAPIKey.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Client.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid client endpoint: %q", c.Client.Endpoint))
	}
	if c.Client.BusinessID <= 0 {
		errs = append(errs, fmt.Errorf("business_id must be positive, got %d", c.Client.BusinessID))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if c.Server.SimilarityThreshold < -1 || c.Server.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity_threshold must be within [-1, 1], got %v", c.Server.SimilarityThreshold))
	}
	if c.Server.MaxConnections < 0 {
		errs = append(errs, fmt.Errorf("max_connections must not be negative, got %d", c.Server.MaxConnections))
	}

	for key, val := range map[string]string{
		"client.timeout":          c.Client.Timeout,
		"server.request_timeout":  c.Server.RequestTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"llm.timeout":             c.LLM.Timeout,
	} {
		if val == "" {
			continue
		}
		if d, err := time.ParseDuration(val); err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("invalid %s: %q", key, val))
		}
	}

	if !contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels))
	}
	if f := c.Logging.Format; f != "json" && f != "console" && f != "text" {
		errs = append(errs, fmt.Errorf("invalid log format: %s (valid: json, console)", f))
	}
	if !contains(ValidThemes, strings.ToLower(c.UI.Theme)) {
		errs = append(errs, fmt.Errorf("invalid theme: %s (valid: %v)", c.UI.Theme, ValidThemes))
	}

	return errors.Join(errs...)
}

// RequireAPIKey reports whether the backend can reach the model provider.
func (c *Config) RequireAPIKey() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY, GOOGLE_API_KEY, or llm.api_key)")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
