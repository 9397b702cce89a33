// Package config loads the CLI configuration from an optional YAML file,
// with environment variables taking precedence over file values.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"storefront-filters/internal/db"
)

// Config is the full runtime configuration.
type Config struct {
	DB                 db.Config `yaml:"db"`
	DefaultChannelSlug string    `yaml:"default_channel_slug"`
	LogLevel           string    `yaml:"log_level"`
}

// Default returns the configuration seen with no file and no environment.
func Default() Config {
	return Config{
		DB:       db.FromEnv(),
		LogLevel: "info",
	}
}

// Load reads path (if non-empty) over the defaults, then applies env overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}
	applyEnv(&cfg)
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return lvl, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.DB.Dialect, "DB_DIALECT")
	override(&cfg.DB.User, "MYSQL_USER")
	override(&cfg.DB.Password, "MYSQL_PASSWORD")
	override(&cfg.DB.Host, "MYSQL_HOST")
	override(&cfg.DB.Port, "MYSQL_PORT")
	override(&cfg.DB.Database, "MYSQL_DATABASE")
	override(&cfg.DB.PostgresDSN, "POSTGRES_DSN")
	override(&cfg.DefaultChannelSlug, "DEFAULT_CHANNEL_SLUG")
	override(&cfg.LogLevel, "LOG_LEVEL")
}

func override(dst *string, key string) {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		*dst = val
	}
}
