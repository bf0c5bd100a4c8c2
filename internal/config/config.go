package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides, e.g. OUTAGE_SOURCE__URL.
const EnvPrefix = "OUTAGE_"

const (
	ServeLive  = "live"
	ServeCache = "cache"

	RefreshNone     = "none"
	RefreshPeriodic = "periodic"

	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config represents configuration data for the outage service.
type Config struct {
	Environment string        `yaml:"environment"`
	LogLevel    string        `yaml:"log_level"`
	Timezone    string        `yaml:"timezone"`
	DateLayout  string        `yaml:"date_layout"`
	HTTP        HTTPConfig    `yaml:"http"`
	Source      SourceConfig  `yaml:"source"`
	Refresh     RefreshConfig `yaml:"refresh"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// HTTPConfig configures the public API listener.
type HTTPConfig struct {
	Addr                  string   `yaml:"addr"`
	CORSOrigins           []string `yaml:"cors_origins"`
	StreamIntervalSeconds int      `yaml:"stream_interval_seconds"`
}

// SourceConfig describes where the outage page comes from.
type SourceConfig struct {
	// Serve selects what requests read: "live" fetches per request, "cache"
	// reads the last stored snapshot.
	Serve              string `yaml:"serve"`
	URL                string `yaml:"url"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	UserAgent          string `yaml:"user_agent"`
	Accept             string `yaml:"accept"`
	AcceptLanguage     string `yaml:"accept_language"`
	Referer            string `yaml:"referer"`
}

// RefreshConfig controls background refresh of the cached page.
type RefreshConfig struct {
	Policy          string `yaml:"policy"`
	IntervalMinutes int    `yaml:"interval_minutes"`
	HistorySize     int    `yaml:"history_size"`
}

// CacheConfig selects the snapshot backend.
type CacheConfig struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	RedisURL string `yaml:"redis_url"`
	RedisKey string `yaml:"redis_key"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns sensible defaults in case no configuration file is provided.
func DefaultConfig() Config {
	return Config{
		Environment: "production",
		LogLevel:    "info",
		Timezone:    "Europe/Kyiv",
		DateLayout:  "02.01.2006",
		HTTP: HTTPConfig{
			Addr:                  ":3000",
			CORSOrigins:           []string{"*"},
			StreamIntervalSeconds: 60,
		},
		Source: SourceConfig{
			Serve:              ServeCache,
			URL:                "https://www.zoe.com.ua/outage/",
			TimeoutSeconds:     20,
			InsecureSkipVerify: true,
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36",
			Accept:             "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			AcceptLanguage:     "uk-UA,uk;q=0.9",
			Referer:            "https://www.zoe.com.ua/",
		},
		Refresh: RefreshConfig{
			Policy:          RefreshPeriodic,
			IntervalMinutes: 10,
			HistorySize:     288,
		},
		Cache: CacheConfig{
			Backend:  CacheFile,
			Path:     filepath.Join(".dist", "data", "outage.html"),
			RedisKey: "outagemonitor:page",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads configuration from a yaml file and applies OUTAGE_ environment
// overrides. A missing file falls back to defaults.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	defaults := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = defaults.Timezone
	}
	if c.DateLayout == "" {
		c.DateLayout = defaults.DateLayout
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaults.HTTP.Addr
	}
	if c.HTTP.StreamIntervalSeconds <= 0 {
		c.HTTP.StreamIntervalSeconds = defaults.HTTP.StreamIntervalSeconds
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = defaults.Source.TimeoutSeconds
	}
	if c.Refresh.IntervalMinutes <= 0 {
		c.Refresh.IntervalMinutes = defaults.Refresh.IntervalMinutes
	}
	if c.Refresh.HistorySize <= 0 {
		c.Refresh.HistorySize = defaults.Refresh.HistorySize
	}
	if c.Cache.Path == "" {
		c.Cache.Path = defaults.Cache.Path
	}
	if c.Cache.RedisKey == "" {
		c.Cache.RedisKey = defaults.Cache.RedisKey
	}
	c.Source.Serve = strings.ToLower(strings.TrimSpace(c.Source.Serve))
	c.Refresh.Policy = strings.ToLower(strings.TrimSpace(c.Refresh.Policy))
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
}

// Validate checks enum values and cross-field requirements.
func (c Config) Validate() error {
	switch c.Source.Serve {
	case ServeLive, ServeCache:
	default:
		return fmt.Errorf("unknown source.serve %q", c.Source.Serve)
	}
	switch c.Refresh.Policy {
	case RefreshNone, RefreshPeriodic:
	default:
		return fmt.Errorf("unknown refresh.policy %q", c.Refresh.Policy)
	}
	switch c.Cache.Backend {
	case CacheFile:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Source.URL == "" && (c.Source.Serve == ServeLive || c.Refresh.Policy == RefreshPeriodic) {
		return errors.New("source.url is required to fetch the outage page")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RefreshInterval returns the periodic refresh interval.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalMinutes) * time.Minute
}

// FetchTimeout returns the upstream request timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// StreamInterval returns the websocket push interval.
func (c Config) StreamInterval() time.Duration {
	return time.Duration(c.HTTP.StreamIntervalSeconds) * time.Second
}
