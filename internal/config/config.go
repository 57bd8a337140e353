package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the fully processed server configuration.
type Config struct {
	Listen    string        `yaml:"listen"`
	UserAgent string        `yaml:"user_agent"`
	Log       LogConfig     `yaml:"log"`
	Fetch     FetchConfig   `yaml:"fetch"`
	Cache     CacheConfig   `yaml:"cache"`
	RateLimit RateLimitConf `yaml:"rate_limit"`
}

// LogConfig selects the logger backend.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FetchConfig controls manifest downloads from origin.
type FetchConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Attempts int           `yaml:"attempts"`
	// AllowRemote enables the manifestUrl field of API requests.
	AllowRemote bool `yaml:"allow_remote"`
}

// CacheConfig controls the parsed-manifest cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

// RateLimitConf limits API requests per second. RPS <= 0 disables limiting.
type RateLimitConf struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Fetch: FetchConfig{
			Timeout:     5 * time.Second,
			Attempts:    3,
			AllowRemote: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    128,
			TTL:     5 * time.Minute,
		},
		RateLimit: RateLimitConf{
			RPS:   0,
			Burst: 1,
		},
	}
}

// LoadConfig reads and parses the YAML configuration file at path. Fields
// missing from the file keep their defaults. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "hclog":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (want json or hclog)", c.Log.Format))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if c.Fetch.Attempts < 1 {
		errs = append(errs, errors.New("fetch.attempts must be at least 1"))
	}
	if c.Cache.Enabled && c.Cache.Size < 1 {
		errs = append(errs, errors.New("cache.size must be at least 1 when the cache is enabled"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be at least 1"))
	}

	return errors.Join(errs...)
}
