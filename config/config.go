package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/BurntSushi/toml"
)

const Version = "0.1.0"

type Config struct {
	URL          string `toml:"url"`
	Workers      int    `toml:"workers"`
	ReqTimeout   int    `toml:"req_timeout"` // in seconds
	MaxBodyBytes int64  `toml:"max_body_bytes"`
	UserAgent    string `toml:"user_agent"`
	MetricsAddr  string `toml:"metrics_addr"`
	LogLevel     string `toml:"log_level"`
}

func NewConfig() *Config {
	return &Config{
		Workers:      6,
		ReqTimeout:   10,
		MaxBodyBytes: 5 << 20,
		UserAgent:    "linkcheck/" + Version,
		LogLevel:     "info",
	}
}

// Load decodes the TOML file at path over the defaults. On error the
// defaults are still returned, so a missing file can be tolerated by the
// caller.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return NewConfig(), fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.ReqTimeout) * time.Second
}

func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.ReqTimeout <= 0 {
		errs = append(errs, fmt.Errorf("req_timeout must be positive, got %d", c.ReqTimeout))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes))
	}
	if c.URL == "" {
		errs = append(errs, errors.New("url is required"))
	} else if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("url %q is not an absolute http(s) url", c.URL))
	}
	return errors.Join(errs...)
}
