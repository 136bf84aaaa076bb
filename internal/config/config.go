// Package config loads client settings from flags, the environment, an
// optional .env file and ~/.authdemo/config.yaml using Viper.
//
// Precedence, highest first: bound flags, AUTHDEMO_* environment variables
// (a .env file is loaded into the environment first), the config file,
// defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/authdemo/internal/log"
	"github.com/felixgeelhaar/authdemo/internal/store"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "AUTHDEMO"

// DefaultAPIURL is the address of a locally running auth API.
const DefaultAPIURL = "http://127.0.0.1:8000"

// Config holds the client configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api" json:"api" yaml:"api"`
	Store     StoreConfig     `mapstructure:"store" json:"store" yaml:"store"`
	Health    HealthConfig    `mapstructure:"health" json:"health" yaml:"health"`
	Log       LogConfig       `mapstructure:"log" json:"log" yaml:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry" yaml:"telemetry"`
}

// APIConfig locates the auth API.
type APIConfig struct {
	URL     string        `mapstructure:"url" json:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// StoreConfig selects the session slot backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" json:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" json:"path" yaml:"path"`
}

// HealthConfig controls the health monitor.
type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval" json:"interval" yaml:"interval"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// LogConfig controls diagnostic logging. An empty File logs to stderr.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
	File   string `mapstructure:"file" json:"file" yaml:"file"`
}

// TelemetryConfig controls trace export.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
}

// FlagKeys maps config keys to the persistent flag names that override them.
var FlagKeys = map[string]string{
	"api.url":       "api-url",
	"store.backend": "store",
	"store.path":    "store-path",
	"log.level":     "log-level",
	"log.format":    "log-format",
	"log.file":      "log-file",
}

// Options tell Load where to look.
type Options struct {
	// ConfigFile overrides the default ~/.authdemo/config.yaml.
	ConfigFile string
	// EnvFile is loaded into the environment when it exists. Defaults to ".env".
	EnvFile string
	// Flags, when set, override file and environment values for FlagKeys,
	// but only for flags the user actually changed.
	Flags *pflag.FlagSet
}

// DefaultPath returns ~/.authdemo/config.yaml.
func DefaultPath() string {
	return filepath.Join(store.DefaultDir(), "config.yaml")
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		API:    APIConfig{URL: DefaultAPIURL, Timeout: 30 * time.Second},
		Store:  StoreConfig{Backend: store.BackendFile},
		Health: HealthConfig{Interval: 30 * time.Second, Timeout: 5 * time.Second},
		Log:    LogConfig{Level: "warn", Format: "text"},
	}
}

// Load reads configuration from all sources and validates it.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.AddConfigPath(store.DefaultDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit one must exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || opts.ConfigFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if opts.Flags != nil {
		for key, name := range FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api.url", d.API.URL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", "")
	v.SetDefault("health.interval", d.Health.Interval)
	v.SetDefault("health.timeout", d.Health.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", "")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.url %q: must be an http(s) URL", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}

	switch c.Store.Backend {
	case store.BackendFile, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("unknown store.backend %q (supported: file, sqlite, memory)", c.Store.Backend)
	}

	if c.Health.Interval <= 0 {
		return fmt.Errorf("health.interval must be positive, got %s", c.Health.Interval)
	}
	if c.Health.Timeout <= 0 {
		return fmt.Errorf("health.timeout must be positive, got %s", c.Health.Timeout)
	}

	if _, err := log.LookupLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "console":
	default:
		return fmt.Errorf("unknown log.format %q (supported: text, json)", c.Log.Format)
	}
	return nil
}

// StoreOptions returns the backend selection for store.Open.
func (c *Config) StoreOptions() store.Config {
	return store.Config{Backend: c.Store.Backend, Path: c.Store.Path}
}

// Save writes cfg as YAML, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
