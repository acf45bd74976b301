// Package config loads server configuration from flags, environment variables
// (prefixed TRIPBITE_) and an optional config file.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/mmynk/tripbite/internal/consensus"
)

// EnvPrefix prefixes every environment variable, e.g. TRIPBITE_JWT_SECRET.
const EnvPrefix = "TRIPBITE"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Addr     string `mapstructure:"addr"`
	Driver   string `mapstructure:"driver"`
	DBPath   string `mapstructure:"db_path"`
	LogLevel string `mapstructure:"log_level"`

	JWTSecret  string        `mapstructure:"jwt_secret"`
	// SessionTTL of zero keeps sessions until logout.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`

	Places  Places            `mapstructure:"places"`
	Weights consensus.Weights `mapstructure:"weights"`
}

// Places configures the place-search provider. Without an API key the server
// falls back to fixed mock results.
type Places struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Keyword       string        `mapstructure:"keyword"`
	Language      string        `mapstructure:"language"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers every key with its default, which also lets
// AutomaticEnv resolve nested keys during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("driver", DriverSQLite)
	v.SetDefault("db_path", "./data/tripbite.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_ttl", time.Duration(0))
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("places.api_key", "")
	v.SetDefault("places.base_url", "https://maps.googleapis.com")
	v.SetDefault("places.keyword", "restaurant")
	v.SetDefault("places.language", "ko")
	v.SetDefault("places.rate_per_second", 5.0)
	v.SetDefault("places.timeout", 10*time.Second)
	v.SetDefault("weights.like", consensus.DefaultWeights.Like)
	v.SetDefault("weights.dislike", consensus.DefaultWeights.Dislike)
	v.SetDefault("weights.budget_penalty", consensus.DefaultWeights.BudgetPenalty)
}

// Load reads configuration from v. If configFile is set it must exist.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required (set TRIPBITE_JWT_SECRET)")
	}
	switch c.Driver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.SessionTTL < 0 {
		return errors.New("session_ttl must not be negative")
	}
	if err := c.Weights.Validate(); err != nil {
		return errors.Wrap(err, "invalid weights")
	}
	return nil
}
