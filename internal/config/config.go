package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/claude/plancoach/internal/storage"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	LLM       LLMConfig       `yaml:"llm"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StoreConfig struct {
	Driver     string         `yaml:"driver"`
	Key        string         `yaml:"key"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
	Redis      RedisConfig    `yaml:"redis"`
}

type PostgresConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
	Migrations string `yaml:"migrations"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LLMConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	FallbackModel string        `yaml:"fallback_model"`
	Temperature   float64       `yaml:"temperature"`
	MaxTokens     int           `yaml:"max_tokens"`
	Timeout       time.Duration `yaml:"timeout"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DSN returns a PostgreSQL connection string.
func (d PostgresConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Options converts the store section into storage.Open options.
func (s StoreConfig) Options() storage.Options {
	return storage.Options{
		Driver:      s.Driver,
		SQLitePath:  s.SQLitePath,
		PostgresDSN: s.Postgres.DSN(),
		Migrations:  s.Postgres.Migrations,
		RedisAddr:   s.Redis.Addr,
		RedisPass:   s.Redis.Password,
		RedisDB:     s.Redis.DB,
	}
}

// SlogLevel maps log.level to a slog level. Unknown values mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Store: StoreConfig{
			Driver:     "sqlite",
			Key:        "saved_workouts",
			SQLitePath: "data/plancoach.db",
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.7,
			MaxTokens:   2048,
			Timeout:     60 * time.Second,
		},
		Tailscale: TailscaleConfig{Hostname: "plancoach", StateDir: "tsnet-state"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. An empty path skips the file.
// Env vars use the prefix PLANCOACH_ and underscore-separated paths:
//
//	PLANCOACH_SERVER_HOST, PLANCOACH_SERVER_PORT,
//	PLANCOACH_STORE_DRIVER, PLANCOACH_STORE_KEY, PLANCOACH_STORE_SQLITE_PATH,
//	PLANCOACH_DB_HOST, PLANCOACH_DB_PORT, PLANCOACH_DB_NAME,
//	PLANCOACH_DB_USER, PLANCOACH_DB_PASSWORD, PLANCOACH_DB_SSLMODE,
//	PLANCOACH_REDIS_ADDR, PLANCOACH_REDIS_PASSWORD, PLANCOACH_REDIS_DB,
//	PLANCOACH_LLM_BASE_URL, PLANCOACH_LLM_API_KEY, PLANCOACH_LLM_MODEL,
//	PLANCOACH_LLM_FALLBACK_MODEL, PLANCOACH_TAILSCALE_ENABLED, PLANCOACH_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("PLANCOACH_SERVER_HOST", &cfg.Server.Host)
	num("PLANCOACH_SERVER_PORT", &cfg.Server.Port)

	str("PLANCOACH_STORE_DRIVER", &cfg.Store.Driver)
	str("PLANCOACH_STORE_KEY", &cfg.Store.Key)
	str("PLANCOACH_STORE_SQLITE_PATH", &cfg.Store.SQLitePath)

	str("PLANCOACH_DB_HOST", &cfg.Store.Postgres.Host)
	num("PLANCOACH_DB_PORT", &cfg.Store.Postgres.Port)
	str("PLANCOACH_DB_NAME", &cfg.Store.Postgres.Name)
	str("PLANCOACH_DB_USER", &cfg.Store.Postgres.User)
	str("PLANCOACH_DB_PASSWORD", &cfg.Store.Postgres.Password)
	str("PLANCOACH_DB_SSLMODE", &cfg.Store.Postgres.SSLMode)

	str("PLANCOACH_REDIS_ADDR", &cfg.Store.Redis.Addr)
	str("PLANCOACH_REDIS_PASSWORD", &cfg.Store.Redis.Password)
	num("PLANCOACH_REDIS_DB", &cfg.Store.Redis.DB)

	str("PLANCOACH_LLM_BASE_URL", &cfg.LLM.BaseURL)
	str("PLANCOACH_LLM_API_KEY", &cfg.LLM.APIKey)
	str("PLANCOACH_LLM_MODEL", &cfg.LLM.Model)
	str("PLANCOACH_LLM_FALLBACK_MODEL", &cfg.LLM.FallbackModel)

	if v := os.Getenv("PLANCOACH_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	str("PLANCOACH_LOG_LEVEL", &cfg.Log.Level)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required")
		}
	case "postgres":
		pg := c.Store.Postgres
		if pg.Host == "" {
			return fmt.Errorf("store.postgres.host is required")
		}
		if pg.Port == 0 {
			return fmt.Errorf("store.postgres.port is required")
		}
		if pg.Name == "" {
			return fmt.Errorf("store.postgres.name is required")
		}
		if pg.User == "" {
			return fmt.Errorf("store.postgres.user is required")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required")
		}
	case "memory":
	default:
		return fmt.Errorf("store.driver %q is not one of sqlite, postgres, redis, memory", c.Store.Driver)
	}

	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
