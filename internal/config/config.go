// Package config loads sessionflow settings from a TOML file and
// SESSIONFLOW_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Backends lists every supported storage backend.
var Backends = []string{BackendMemory, BackendSQLite, BackendPostgres, BackendRedis, BackendMongo}

// EnvPrefix prefixes environment overrides, e.g. SESSIONFLOW_SDK_BASE_URL.
const EnvPrefix = "SESSIONFLOW"

// Config holds application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	SDK     SDKConfig     `mapstructure:"sdk"`
	UI      UIConfig      `mapstructure:"ui"`
	Log     LogConfig     `mapstructure:"log"`
	MockIDP MockIDPConfig `mapstructure:"mockidp"`
}

// StorageConfig selects where the session record lives.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	// DSN is a file path for sqlite, a URL for postgres, redis and mongo.
	DSN        string `mapstructure:"dsn"`
	Key        string `mapstructure:"key"`
	Passphrase string `mapstructure:"passphrase"`
	// Prefix namespaces redis keys.
	Prefix string `mapstructure:"prefix"`
	// Database names the mongo database.
	Database string `mapstructure:"database"`
}

// SDKConfig points at the identity service.
type SDKConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	AlertDelay time.Duration `mapstructure:"alert_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MockIDPConfig configures the bundled mock identity service.
type MockIDPConfig struct {
	Addr         string `mapstructure:"addr"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.dsn", filepath.Join(homeDir(), ".local", "share", "sessionflow", "session.db"))
	v.SetDefault("storage.key", "state")
	v.SetDefault("storage.passphrase", "")
	v.SetDefault("storage.prefix", "sessionflow:")
	v.SetDefault("storage.database", "sessionflow")
	v.SetDefault("sdk.base_url", "http://127.0.0.1:8787")
	v.SetDefault("sdk.client_id", "")
	v.SetDefault("sdk.client_secret", "")
	v.SetDefault("ui.alert_delay", "50ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("mockidp.addr", "127.0.0.1:8787")
	v.SetDefault("mockidp.client_id", "sessionflow")
	v.SetDefault("mockidp.client_secret", "sessionflow-secret")
}

func homeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return os.Getenv("HOME")
}

// DefaultPath is where the config file lives unless overridden.
func DefaultPath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(homeDir(), ".config", "sessionflow", "config.toml")
}

// Load reads configuration from path, or DefaultPath when path is empty,
// and applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.Storage.Backend) {
		return fmt.Errorf("storage.backend: unknown backend %q (want one of %s)",
			c.Storage.Backend, strings.Join(Backends, ", "))
	}
	if c.Storage.Backend != BackendMemory && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for the %s backend", c.Storage.Backend)
	}
	if c.UI.AlertDelay < 0 {
		return errors.New("ui.alert_delay must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// Save writes cfg as TOML to path, or DefaultPath when path is empty,
// creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.dsn", cfg.Storage.DSN)
	v.Set("storage.key", cfg.Storage.Key)
	v.Set("storage.passphrase", cfg.Storage.Passphrase)
	v.Set("storage.prefix", cfg.Storage.Prefix)
	v.Set("storage.database", cfg.Storage.Database)
	v.Set("sdk.base_url", cfg.SDK.BaseURL)
	v.Set("sdk.client_id", cfg.SDK.ClientID)
	v.Set("sdk.client_secret", cfg.SDK.ClientSecret)
	v.Set("ui.alert_delay", cfg.UI.AlertDelay.String())
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("mockidp.addr", cfg.MockIDP.Addr)
	v.Set("mockidp.client_id", cfg.MockIDP.ClientID)
	v.Set("mockidp.client_secret", cfg.MockIDP.ClientSecret)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
