package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iTrooz/response-cache/internal/cache"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
cache:
  ttl: 30
upstream:
  url: "https://api.example.com/v1/rates"
  methods: ["GET", "POST"]
  status_codes: ["200"]
log:
  level: debug
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, 30, config.Cache.TTL)
	assert.Equal(t, "https://api.example.com/v1/rates", config.Upstream.URL)
	assert.Equal(t, []string{"GET", "POST"}, config.Upstream.Methods)
	assert.Equal(t, []string{"200"}, config.Upstream.StatusCodes)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
upstream:
  url: "https://api.example.com/"
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, 86400, config.Cache.TTL)
	assert.Equal(t, []string{"GET"}, config.Upstream.Methods)
	assert.Equal(t, []string{"2xx"}, config.Upstream.StatusCodes)
	assert.Equal(t, "info", config.Log.Level)
	assert.NoError(t, config.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Upstream.URL = "https://api.example.com/data"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "zero TTL", mutate: func(c *Config) { c.Cache.TTL = 0 }},
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = -1 }, wantErr: true},
		{name: "negative TTL", mutate: func(c *Config) { c.Cache.TTL = -5 }, wantErr: true},
		{name: "largest TTL", mutate: func(c *Config) { c.Cache.TTL = int(cache.MaxMinutes) }},
		{name: "TTL overflowing to a shorter duration", mutate: func(c *Config) { c.Cache.TTL = 310_000_000 }, wantErr: true},
		{name: "TTL overflowing to a negative duration", mutate: func(c *Config) { c.Cache.TTL = 200_000_000 }, wantErr: true},
		{name: "missing upstream", mutate: func(c *Config) { c.Upstream.URL = "" }, wantErr: true},
		{name: "relative upstream", mutate: func(c *Config) { c.Upstream.URL = "/data" }, wantErr: true},
		{name: "ftp upstream", mutate: func(c *Config) { c.Upstream.URL = "ftp://example.com/x" }, wantErr: true},
		{name: "no methods", mutate: func(c *Config) { c.Upstream.Methods = nil }, wantErr: true},
		{name: "bad status pattern", mutate: func(c *Config) { c.Upstream.StatusCodes = []string{"2x"} }, wantErr: true},
		{name: "CA cert without key", mutate: func(c *Config) { c.Server.HTTPS.CACertFile = "ca.pem" }, wantErr: true},
		{name: "invalid log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetCacheTTL(t *testing.T) {
	config := Config{Cache: CacheConfig{TTL: 90}}
	assert.Equal(t, time.Hour+30*time.Minute, config.GetCacheTTL())
}

func TestGetLogLevel(t *testing.T) {
	config := Config{Log: LogConfig{Level: "warn"}}
	level, err := config.GetLogLevel()
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, level)
}

func TestMatchesStatusCode(t *testing.T) {
	tests := []struct {
		code    int
		pattern string
		want    bool
	}{
		{200, "200", true},
		{201, "200", false},
		{204, "2xx", true},
		{404, "4xx", true},
		{500, "4xx", false},
		{200, "bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesStatusCode(tt.code, tt.pattern))
		})
	}
}

func TestYAML(t *testing.T) {
	config := Default()
	config.Upstream.URL = "https://api.example.com/"

	out, err := config.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "url: https://api.example.com/")
	assert.Contains(t, string(out), "ttl: 86400")
}
