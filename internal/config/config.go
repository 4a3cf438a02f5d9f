package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Render    RenderConfig    `yaml:"render"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type GeminiConfig struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	PlanModel     string        `yaml:"plan_model"`
	AdviceModel   string        `yaml:"advice_model"`
	FallbackModel string        `yaml:"fallback_model"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
}

// Database drivers. An empty driver disables the generation log.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
	Path       string `yaml:"path"`
	Migrations string `yaml:"migrations"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type RenderConfig struct {
	Compress *bool `yaml:"compress"`
}

// CompressOutput reports whether PDF streams should be compressed. Defaults to true.
func (r RenderConfig) CompressOutput() bool {
	return r.Compress == nil || *r.Compress
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

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Gemini: GeminiConfig{
			PlanModel:   "gemini-2.0-flash",
			AdviceModel: "gemini-1.5-pro",
			Timeout:     60 * time.Second,
			MaxRetries:  2,
		},
		Database: DatabaseConfig{
			Port:       5432,
			Path:       "aithlete.db",
			Migrations: "migrations",
		},
		Tailscale: TailscaleConfig{Hostname: "aithlete", StateDir: "tsnet-state"},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix AITHLETE_ and underscore-separated paths:
//
//	AITHLETE_SERVER_HOST, AITHLETE_SERVER_PORT,
//	AITHLETE_GEMINI_API_KEY (or GEMINI_API_KEY), AITHLETE_GEMINI_BASE_URL,
//	AITHLETE_GEMINI_PLAN_MODEL, AITHLETE_GEMINI_ADVICE_MODEL,
//	AITHLETE_GEMINI_FALLBACK_MODEL, AITHLETE_GEMINI_MAX_RETRIES,
//	AITHLETE_DB_DRIVER, AITHLETE_DB_HOST, AITHLETE_DB_PORT, AITHLETE_DB_NAME,
//	AITHLETE_DB_USER, AITHLETE_DB_PASSWORD, AITHLETE_DB_SSLMODE, AITHLETE_DB_PATH,
//	AITHLETE_AUTH_API_KEY, AITHLETE_TAILSCALE_ENABLED
//
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := defaults()

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
	if v := os.Getenv("AITHLETE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("AITHLETE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("AITHLETE_GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("AITHLETE_GEMINI_BASE_URL"); v != "" {
		cfg.Gemini.BaseURL = v
	}
	if v := os.Getenv("AITHLETE_GEMINI_PLAN_MODEL"); v != "" {
		cfg.Gemini.PlanModel = v
	}
	if v := os.Getenv("AITHLETE_GEMINI_ADVICE_MODEL"); v != "" {
		cfg.Gemini.AdviceModel = v
	}
	if v := os.Getenv("AITHLETE_GEMINI_FALLBACK_MODEL"); v != "" {
		cfg.Gemini.FallbackModel = v
	}
	if v := os.Getenv("AITHLETE_GEMINI_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gemini.MaxRetries = n
		}
	}
	if v := os.Getenv("AITHLETE_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("AITHLETE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("AITHLETE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("AITHLETE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("AITHLETE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("AITHLETE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("AITHLETE_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("AITHLETE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("AITHLETE_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("AITHLETE_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required (or set GEMINI_API_KEY)")
	}
	if c.Gemini.PlanModel == "" || c.Gemini.AdviceModel == "" {
		return fmt.Errorf("gemini.plan_model and gemini.advice_model are required")
	}
	if c.Gemini.MaxRetries < 0 {
		return fmt.Errorf("gemini.max_retries must not be negative")
	}

	switch c.Database.Driver {
	case "":
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
			return fmt.Errorf("database.path is required")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
