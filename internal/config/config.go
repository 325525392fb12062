// Package config loads the wayfinder.yaml file used by the CLI.
package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up when no --config flag is given.
const DefaultPath = "wayfinder.yaml"

// Config is the file configuration of the CLI. JSON files are accepted too.
type Config struct {
	// Routes is the route file. A relative path is resolved against the
	// directory of the config file.
	Routes      string        `yaml:"routes"`
	Basename    string        `yaml:"basename"`
	HookTimeout time.Duration `yaml:"hook_timeout"`
	LogLevel    string        `yaml:"log_level"`
	Artifacts   string        `yaml:"artifacts"`
	// Hooks is a hooks.yaml file declaring process-backed hooks.
	Hooks       string        `yaml:"hooks"`

	HTTP     HTTPConfig     `yaml:"http"`
	Sessions SessionsConfig `yaml:"sessions"`
	Redis    RedisConfig    `yaml:"redis"`
}

// HTTPConfig configures `wayfinder serve`.
type HTTPConfig struct {
	Port    int  `yaml:"port"`
	Metrics bool `yaml:"metrics"`
	Watch   bool `yaml:"watch"`
}

// SessionsConfig selects where session snapshots live: "memory", "file"
// or "redis".
type SessionsConfig struct {
	Store        string        `yaml:"store"`
	Dir          string        `yaml:"dir"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
	MaxRedirects int           `yaml:"max_redirects"`

	// EncryptionKey is a base64 AES-256 key. When set, snapshots are sealed
	// before they reach the store. FallbackKeys decrypt older snapshots.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`

	// Mask lists regular expressions; matching param and query keys are
	// masked before storage.
	Mask []string `yaml:"mask"`
}

// Keys decodes the encryption keys. It returns nil keys when encryption
// is off.
func (s SessionsConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	decode := func(name, v string) ([]byte, error) {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("%s: want 32 bytes, got %d", name, len(key))
		}
		return key, nil
	}
	if active, err = decode("sessions.encryption_key", s.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for i, v := range s.FallbackKeys {
		key, err := decode(fmt.Sprintf("sessions.fallback_keys[%d]", i), v)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

// RedisConfig configures the redis session store and locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Lock     bool          `yaml:"lock"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Routes:   "routes.yaml",
		LogLevel: "info",
		HTTP:     HTTPConfig{Port: 8080},
		Sessions: SessionsConfig{Store: "memory", LockTTL: 30 * time.Second, MaxRedirects: 10},
		Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "wayfinder:session:"},
	}
}

// Load reads path on top of the defaults. A missing file at DefaultPath
// is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Routes != "" && !filepath.IsAbs(cfg.Routes) {
		cfg.Routes = filepath.Join(filepath.Dir(path), cfg.Routes)
	}
	if cfg.Artifacts != "" && !filepath.IsAbs(cfg.Artifacts) {
		cfg.Artifacts = filepath.Join(filepath.Dir(path), cfg.Artifacts)
	}
	if cfg.Hooks != "" && !filepath.IsAbs(cfg.Hooks) {
		cfg.Hooks = filepath.Join(filepath.Dir(path), cfg.Hooks)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from WAYFINDER_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set("WAYFINDER_ROUTES", &c.Routes)
	set("WAYFINDER_BASENAME", &c.Basename)
	set("WAYFINDER_HOOKS", &c.Hooks)
	set("WAYFINDER_LOG_LEVEL", &c.LogLevel)
	set("WAYFINDER_SESSION_STORE", &c.Sessions.Store)
	set("WAYFINDER_REDIS_ADDR", &c.Redis.Addr)
	set("WAYFINDER_REDIS_PASSWORD", &c.Redis.Password)
	set("WAYFINDER_SESSION_KEY", &c.Sessions.EncryptionKey)

	if v := getenv("WAYFINDER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WAYFINDER_PORT: %w", err)
		}
		c.HTTP.Port = port
	}
	return c.Validate()
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if c.HookTimeout < 0 {
		return fmt.Errorf("hook_timeout must not be negative")
	}
	switch c.Sessions.Store {
	case "", "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown session store %q", c.Sessions.Store)
	}
	if _, _, err := c.Sessions.Keys(); err != nil {
		return err
	}
	for _, p := range c.Sessions.Mask {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("sessions.mask: %w", err)
		}
	}
	return nil
}
