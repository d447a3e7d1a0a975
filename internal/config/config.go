package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	Events   EventsConfig  `yaml:"events"`
	Gemini   GeminiConfig  `yaml:"gemini"`
	Monitor  MonitorConfig `yaml:"monitor"`
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port         int    `yaml:"port"`
	MetricsPort  int    `yaml:"metrics_port"`
	AdminToken   string `yaml:"admin_token"`
	RateLimitRPM int    `yaml:"rate_limit_rpm"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres, redis, memory
	DSN    string `yaml:"dsn"`
}

type EventsConfig struct {
	NATSURL string `yaml:"nats_url"` // empty disables publishing
}

type GeminiConfig struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type MonitorConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutMs) * time.Millisecond
}

func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalMs) * time.Millisecond
}

// Location resolves Timezone, falling back to the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         8600,
			MetricsPort:  8601,
			RateLimitRPM: 120,
			MaxBodyBytes: 20 << 20,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "audit5s.db",
		},
		Gemini: GeminiConfig{
			URL:       "https://generativelanguage.googleapis.com",
			Model:     "gemini-2.5-flash-image",
			TimeoutMs: 60000,
		},
		Monitor: MonitorConfig{
			IntervalMs: 3600000,
		},
		Timezone: "Local",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AUDIT5S_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("AUDIT5S_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("AUDIT5S_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("AUDIT5S_RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitRPM = n
		}
	}
	if v := os.Getenv("AUDIT5S_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("AUDIT5S_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("AUDIT5S_NATS_URL"); v != "" {
		cfg.Events.NATSURL = v
	}
	if v := os.Getenv("AUDIT5S_GEMINI_URL"); v != "" {
		cfg.Gemini.URL = v
	}
	if v := os.Getenv("AUDIT5S_GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" && cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("AUDIT5S_GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("AUDIT5S_MONITOR_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.IntervalMs = n
		}
	}
	if v := os.Getenv("AUDIT5S_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("AUDIT5S_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AUDIT5S_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
