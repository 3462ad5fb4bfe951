package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the pharmsim CLI.
//
// Fields:
//   - APIBaseURL: scheme://host[:port] of the platform API.
//   - StatePath: SQLite file holding the persist flag and API cookies.
//   - RequestTimeout: overall timeout of a single HTTP request.
//   - RefreshTimeout: upper bound of one session renewal.
//   - LogLevel, LogFormat: diagnostics written to stderr.
type Config struct {
	APIBaseURL     string
	StatePath      string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration
	LogLevel       string
	LogFormat      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:5000"
	c.StatePath = "pharmsim.db"
	c.RequestTimeout = 10 * time.Second
	c.RefreshTimeout = 10 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.APIBaseURL)
	}
	if c.StatePath == "" {
		return fmt.Errorf("state path must not be empty")
	}
	if c.RequestTimeout <= 0 || c.RefreshTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file named by --config (if any) and the flags set on fs. Later
// sources take precedence over earlier ones. fs must have been prepared with
// RegisterFlags and parsed.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
