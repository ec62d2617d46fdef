// Package config loads the server configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	envDevelopment = "development"
)

var ErrMissingSecret = errors.New("JWT_SECRET is required")

// Config is the complete server configuration.
type Config struct {
	Port   string `yaml:"port"`
	Host   string `yaml:"host"`
	AppEnv string `yaml:"app_env"`

	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// Store selects the repositories: memory, postgres or mongo.
	Store         string `yaml:"store"`
	DatabaseURL   string `yaml:"database_url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	// RedisURL empty keeps flash messages in memory.
	RedisURL      string        `yaml:"redis_url"`
	SessionCookie string        `yaml:"session_cookie"`
	SessionTTL    time.Duration `yaml:"session_ttl"`

	PublicDir  string `yaml:"public_dir"`
	LogLevel   string `yaml:"log_level"`
	BcryptCost int    `yaml:"bcrypt_cost"`
}

// DefaultConfig returns a Config with every optional key at its default.
func DefaultConfig() *Config {
	return &Config{
		Port:          "5500",
		Host:          "0.0.0.0",
		AppEnv:        envDevelopment,
		TokenTTL:      time.Hour,
		Store:         StoreMemory,
		MongoDatabase: "gomotors",
		SessionCookie: "sessionId",
		SessionTTL:    24 * time.Hour,
		PublicDir:     "public",
		LogLevel:      "info",
		BcryptCost:    10,
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"PORT":           &c.Port,
		"HOST":           &c.Host,
		"APP_ENV":        &c.AppEnv,
		"JWT_SECRET":     &c.JWTSecret,
		"STORE":          &c.Store,
		"DATABASE_URL":   &c.DatabaseURL,
		"MONGO_URI":      &c.MongoURI,
		"MONGO_DATABASE": &c.MongoDatabase,
		"REDIS_URL":      &c.RedisURL,
		"SESSION_COOKIE": &c.SessionCookie,
		"PUBLIC_DIR":     &c.PublicDir,
		"LOG_LEVEL":      &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"TOKEN_TTL":   &c.TokenTTL,
		"SESSION_TTL": &c.SessionTTL,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup("BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		c.BcryptCost = n
	}
	return nil
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31")
	}

	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}

// Secure reports whether cookies must carry the Secure attribute.
func (c *Config) Secure() bool {
	return c.AppEnv != envDevelopment
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
