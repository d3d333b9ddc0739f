package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort      = 8080
	DefaultStream        = "splunk"
	DefaultRetention     = 24 * time.Hour
	DefaultMaxPerStream  = 1000
	DefaultAuthHeader    = "x-api-key"
	DefaultRelayTimeout  = 10 * time.Second
	DefaultLogLevel      = "info"
	DefaultShutdownGrace = 10 * time.Second
)

// Config holds the server configuration parsed from the `server:` section
// of config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port for webhooks, the REST API, metrics and the
	// WebSocket hub (default 8080).
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// Auth configures API-key authentication of webhook callers.
	Auth AuthConfig `yaml:"auth"`

	// Streams lists the streams webhooks may post to. Empty allows any stream.
	Streams []string `yaml:"streams"`

	// DefaultStream is used when a webhook URL carries no stream parameter.
	DefaultStream string `yaml:"default_stream"`

	// Store controls in-memory message retention.
	Store StoreConfig `yaml:"store"`

	// Relay lists outbound chat webhooks that receive a copy of each message.
	Relay RelayConfig `yaml:"relay"`
}

// AuthConfig controls webhook authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header checked when the api_key query parameter is
	// absent. Defaults to "x-api-key".
	Header string `yaml:"header"`

	// Keys binds API keys to sender names.
	Keys []APIKey `yaml:"keys"`
}

// APIKey is one accepted key. The key itself lives in an environment variable.
type APIKey struct {
	Name   string `yaml:"name"`
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment.
func (k APIKey) Key() string {
	if k.KeyEnv == "" {
		return ""
	}
	return os.Getenv(k.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// Resolved returns a key → sender name map of every key whose environment
// variable is set. Keys with an empty value are skipped.
func (a AuthConfig) Resolved() map[string]string {
	out := make(map[string]string, len(a.Keys))
	for _, k := range a.Keys {
		if v := k.Key(); v != "" {
			out[v] = k.Name
		}
	}
	return out
}

// StoreConfig controls in-memory message retention.
type StoreConfig struct {
	// Retention is how long a message stays in the store. Default: 24h.
	Retention time.Duration `yaml:"retention"`

	// MaxPerStream caps the messages kept per stream; the oldest are dropped
	// first. Default: 1000.
	MaxPerStream int `yaml:"max_per_stream"`
}

// RelayConfig holds outbound delivery targets.
type RelayConfig struct {
	Timeout time.Duration  `yaml:"timeout"`
	Targets []TargetConfig `yaml:"targets"`
}

// TargetConfig defines one outbound webhook.
type TargetConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`

	// Streams restricts delivery to messages on these streams. Empty means all.
	Streams []string `yaml:"streams"`
}

// URL returns the webhook URL resolved from the environment.
func (t TargetConfig) URL() string {
	if t.URLEnv == "" {
		return ""
	}
	return os.Getenv(t.URLEnv)
}

// SlogLevel maps LogLevel to a slog.Level. Validation guarantees the value
// is known, so the fallback is never hit for a loaded config.
func (s ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the config file at path, returning the server configuration.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// KeySet returns Resolved, or an error in apikey mode when no key resolves.
func (a AuthConfig) KeySet() (map[string]string, error) {
	keys := a.Resolved()
	if a.Mode == "apikey" && len(keys) == 0 {
		envs := make([]string, 0, len(a.Keys))
		for _, k := range a.Keys {
			envs = append(envs, k.KeyEnv)
		}
		return nil, fmt.Errorf("config: auth mode apikey but no API key is set (key_env: %s)", strings.Join(envs, ", "))
	}
	return keys, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:      DefaultHTTPPort,
			LogLevel:      DefaultLogLevel,
			DefaultStream: DefaultStream,
			Store: StoreConfig{
				Retention:    DefaultRetention,
				MaxPerStream: DefaultMaxPerStream,
			},
			Relay: RelayConfig{
				Timeout: DefaultRelayTimeout,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", s.LogLevel)
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	for i, k := range s.Auth.Keys {
		if k.Name == "" || k.KeyEnv == "" {
			return fmt.Errorf("server.auth.keys[%d]: name and key_env are required", i)
		}
	}
	if s.DefaultStream == "" {
		return fmt.Errorf("server.default_stream must not be empty")
	}
	if len(s.Streams) > 0 && !contains(s.Streams, s.DefaultStream) {
		return fmt.Errorf("server.default_stream %q is not listed in server.streams", s.DefaultStream)
	}
	if s.Store.Retention <= 0 {
		return fmt.Errorf("server.store.retention must be positive")
	}
	if s.Store.MaxPerStream <= 0 {
		return fmt.Errorf("server.store.max_per_stream must be positive")
	}
	if s.Relay.Timeout <= 0 {
		return fmt.Errorf("server.relay.timeout must be positive")
	}
	for i, t := range s.Relay.Targets {
		switch t.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("server.relay.targets[%d].type %q unknown: want slack|teams|http", i, t.Type)
		}
		if t.URLEnv == "" {
			return fmt.Errorf("server.relay.targets[%d].url_env is required", i)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
