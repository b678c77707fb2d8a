package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/iTrooz/response-cache/internal/cache"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `koanf:"server" yaml:"server"`
	Cache    CacheConfig    `koanf:"cache" yaml:"cache"`
	Upstream UpstreamConfig `koanf:"upstream" yaml:"upstream"`
	Log      LogConfig      `koanf:"log" yaml:"log"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port  int         `koanf:"port" yaml:"port"`
	HTTPS HTTPSConfig `koanf:"https" yaml:"https"`
}

// HTTPSConfig holds the CA used to intercept HTTPS upstreams
type HTTPSConfig struct {
	CACertFile string `koanf:"ca_cert_file" yaml:"ca_cert_file"`
	CAKeyFile  string `koanf:"ca_key_file" yaml:"ca_key_file"`
}

// CacheConfig contains cache-related configuration
type CacheConfig struct {
	// TTL in minutes
	TTL int `koanf:"ttl" yaml:"ttl"`
}

// UpstreamConfig describes the single endpoint whose response is cached
type UpstreamConfig struct {
	URL         string   `koanf:"url" yaml:"url"`
	Methods     []string `koanf:"methods" yaml:"methods"`
	StatusCodes []string `koanf:"status_codes" yaml:"status_codes"`
}

// LogConfig controls logrus output
type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
}

// Default returns the configuration used for every field a file leaves unset
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Cache:  CacheConfig{TTL: int(cache.DefaultTTL / time.Minute)},
		Upstream: UpstreamConfig{
			Methods:     []string{"GET"},
			StatusCodes: []string{"2xx"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load loads configuration from a YAML file on top of the defaults
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	return &config, nil
}

// GetCacheTTL converts the configured TTL to a duration
func (c *Config) GetCacheTTL() time.Duration {
	return cache.Minutes(c.Cache.TTL)
}

// GetLogLevel parses the configured log level
func (c *Config) GetLogLevel() (logrus.Level, error) {
	return logrus.ParseLevel(c.Log.Level)
}

var statusCodePattern = regexp.MustCompile(`^[1-5]([0-9]{2}|xx)$`)

// MatchesStatusCode reports whether code matches a pattern such as "200" or "2xx"
func MatchesStatusCode(code int, pattern string) bool {
	if !statusCodePattern.MatchString(pattern) {
		return false
	}
	s := fmt.Sprintf("%03d", code)
	if pattern[1:] == "xx" {
		return s[0] == pattern[0]
	}
	return s == pattern
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got: %d", c.Cache.TTL)
	}
	if int64(c.Cache.TTL) > cache.MaxMinutes {
		return fmt.Errorf("cache TTL must be at most %d minutes, got: %d", cache.MaxMinutes, c.Cache.TTL)
	}

	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream URL is required")
	}
	u, err := url.Parse(c.Upstream.URL)
	if err != nil {
		return fmt.Errorf("invalid upstream URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream URL must be an absolute http(s) URL, got: %s", c.Upstream.URL)
	}

	if len(c.Upstream.Methods) == 0 {
		return fmt.Errorf("at least one upstream method is required")
	}

	for _, pattern := range c.Upstream.StatusCodes {
		if !statusCodePattern.MatchString(pattern) {
			return fmt.Errorf("invalid status code pattern: %s", pattern)
		}
	}

	if (c.Server.HTTPS.CACertFile == "") != (c.Server.HTTPS.CAKeyFile == "") {
		return fmt.Errorf("CA certificate and key must be configured together")
	}

	if _, err := c.GetLogLevel(); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// YAML renders the effective configuration
func (c *Config) YAML() ([]byte, error) {
	return yamlv3.Marshal(c)
}
