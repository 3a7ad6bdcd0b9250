package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Practice  PracticeConfig  `yaml:"practice" toml:"practice"`
	Reminder  ReminderConfig  `yaml:"reminder" toml:"reminder"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver" toml:"driver"`
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Name     string `yaml:"name" toml:"name"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	SSLMode  string `yaml:"sslmode" toml:"sslmode"`
	Path     string `yaml:"path" toml:"path"` // sqlite file
}

type AuthConfig struct {
	APIKey string `yaml:"api_key" toml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Hostname string `yaml:"hostname" toml:"hostname"`
	StateDir string `yaml:"state_dir" toml:"state_dir"`
}

type PracticeConfig struct {
	DefaultMinutes int `yaml:"default_minutes" toml:"default_minutes"`
	MaxMinutes     int `yaml:"max_minutes" toml:"max_minutes"`
}

type ReminderConfig struct {
	Enabled        bool   `yaml:"enabled" toml:"enabled"`
	StartHour      int    `yaml:"start_hour" toml:"start_hour"`
	EndHour        int    `yaml:"end_hour" toml:"end_hour"`
	TelegramToken  string `yaml:"telegram_token" toml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id" toml:"telegram_chat_id"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" toml:"per_minute"`
	Burst     int `yaml:"burst" toml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file (TOML when the name ends in .toml), then
// applies overrides from a .env file next to it and from the environment.
// The process environment wins over .env. Keys use the prefix GUITARDAILY_:
//
//	GUITARDAILY_SERVER_HOST, GUITARDAILY_SERVER_PORT,
//	GUITARDAILY_DB_DRIVER, GUITARDAILY_DB_HOST, GUITARDAILY_DB_PORT,
//	GUITARDAILY_DB_NAME, GUITARDAILY_DB_USER, GUITARDAILY_DB_PASSWORD,
//	GUITARDAILY_DB_SSLMODE, GUITARDAILY_DB_PATH, GUITARDAILY_AUTH_API_KEY,
//	GUITARDAILY_TELEGRAM_TOKEN, GUITARDAILY_TELEGRAM_CHAT_ID,
//	GUITARDAILY_LOG_LEVEL
func Load(path string) (*Config, error) {
	// Defaults that zero can legitimately override are set before decoding.
	cfg := &Config{
		Reminder: ReminderConfig{StartHour: 17, EndHour: 21},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	dotenv, err := readDotenv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg, func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	})

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// readDotenv parses a .env file without touching the process environment.
// A missing file is not an error.
func readDotenv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return env, nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("GUITARDAILY_SERVER_HOST", &cfg.Server.Host)
	num("GUITARDAILY_SERVER_PORT", &cfg.Server.Port)
	str("GUITARDAILY_DB_DRIVER", &cfg.Database.Driver)
	str("GUITARDAILY_DB_HOST", &cfg.Database.Host)
	num("GUITARDAILY_DB_PORT", &cfg.Database.Port)
	str("GUITARDAILY_DB_NAME", &cfg.Database.Name)
	str("GUITARDAILY_DB_USER", &cfg.Database.User)
	str("GUITARDAILY_DB_PASSWORD", &cfg.Database.Password)
	str("GUITARDAILY_DB_SSLMODE", &cfg.Database.SSLMode)
	str("GUITARDAILY_DB_PATH", &cfg.Database.Path)
	str("GUITARDAILY_AUTH_API_KEY", &cfg.Auth.APIKey)
	str("GUITARDAILY_TELEGRAM_TOKEN", &cfg.Reminder.TelegramToken)
	if v := getenv("GUITARDAILY_TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Reminder.TelegramChatID = id
		}
	}
	str("GUITARDAILY_LOG_LEVEL", &cfg.Log.Level)
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Practice.DefaultMinutes == 0 {
		c.Practice.DefaultMinutes = 30
	}
	if c.Practice.MaxMinutes == 0 {
		c.Practice.MaxMinutes = 240
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = 60
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "guitardaily"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Practice.DefaultMinutes < 0 || c.Practice.MaxMinutes < 0 {
		return fmt.Errorf("practice minutes must be positive")
	}
	if c.Practice.DefaultMinutes > c.Practice.MaxMinutes {
		return fmt.Errorf("practice.default_minutes exceeds practice.max_minutes")
	}
	r := c.Reminder
	if r.StartHour < 0 || r.StartHour > 23 || r.EndHour < 0 || r.EndHour > 23 {
		return fmt.Errorf("reminder hours must be within 0..23")
	}
	if r.StartHour > r.EndHour {
		return fmt.Errorf("reminder.start_hour must not be after reminder.end_hour")
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	return nil
}
