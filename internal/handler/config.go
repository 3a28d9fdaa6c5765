package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/swatto/hooktomattermost/internal/mattermost"
)

// DefaultPort is used when neither PORT nor the config file sets one.
const DefaultPort = "9090"

// Config holds the configuration for the handler
//
//nolint:govet // fieldalignment: minor optimization not worth reduced readability
type Config struct {
	WebhookURL    string        `yaml:"webhook_url"`    // Mattermost incoming webhook; checked per request
	InboxURL      string        `yaml:"inbox_url"`      // OpenPhone inbox base for conversation links (optional)
	RateLimit     int           `yaml:"rate_limit"`     // Max requests per minute on /webhook/* (0 = disabled)
	LogFormat     string        `yaml:"log_format"`     // Access log format: "simple" (default) or "nginx"
	LogLevel      string        `yaml:"log_level"`      // debug, info (default), warn or error
	WebhookSecret string        `yaml:"webhook_secret"` // If set, webhooks require Authorization: Bearer <secret>
	DryRun        bool          `yaml:"dry_run"`        // If true, log documents instead of posting them
	RelayTimeout  time.Duration `yaml:"relay_timeout"`  // Timeout of the Mattermost POST (default 30s)
	LogPayloads   bool          `yaml:"log_payloads"`   // Log raw inbound payloads at debug level
}

// Validate checks that the configuration is consistent. A missing WebhookURL
// is not an error here: it is reported per request.
func (c *Config) Validate() error {
	if c.WebhookURL != "" {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("WebhookURL must be an absolute http(s) URL (got %q)", c.WebhookURL)
		}
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RateLimit must be >= 0 (got %d)", c.RateLimit)
	}
	switch c.LogFormat {
	case "", "simple", "nginx":
	default:
		return fmt.Errorf("LogFormat must be \"simple\" or \"nginx\" (got %q)", c.LogFormat)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RelayTimeout < 0 {
		return fmt.Errorf("RelayTimeout must be >= 0 (got %s)", c.RelayTimeout)
	}
	return nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LogLevel must be one of debug, info, warn, error (got %q)", s)
	}
}

// fileConfig is the layout of the optional YAML config file.
type fileConfig struct {
	Config `yaml:",inline"`
	Port   string `yaml:"port"`
}

// LoadConfig builds the configuration from, in increasing precedence, the
// defaults, the YAML file at path (or $CONFIG_FILE), a .env file in the
// working directory, and the process environment. It returns the config and
// the listen port. Invalid numeric or boolean env values are ignored.
func LoadConfig(path string) (*Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config: failed to load .env file", "error", err)
	}

	fc := fileConfig{
		Config: Config{RelayTimeout: mattermost.DefaultTimeout},
		Port:   DefaultPort,
	}
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, "", fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	cfg := &fc.Config
	envString("MATTERMOST_WEBHOOK_URL", &cfg.WebhookURL)
	envString("OPENPHONE_INBOX_URL", &cfg.InboxURL)
	envString("LOG_FORMAT", &cfg.LogFormat)
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("WEBHOOK_SECRET", &cfg.WebhookSecret)
	envBool("DRY_RUN", &cfg.DryRun)
	envBool("LOG_PAYLOADS", &cfg.LogPayloads)

	if s := os.Getenv("RATE_LIMIT"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 0 {
			cfg.RateLimit = parsed
		}
	}
	if s := os.Getenv("RELAY_TIMEOUT"); s != "" {
		if parsed, err := time.ParseDuration(s); err == nil && parsed > 0 {
			cfg.RelayTimeout = parsed
		}
	}

	port := fc.Port
	envString("PORT", &port)
	return cfg, port, nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}
