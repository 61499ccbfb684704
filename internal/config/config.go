// Package config loads application settings from defaults, an optional
// YAML file, a .env file and STUDYHALL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STUDYHALL"

type Config struct {
	DB  string    `mapstructure:"db"`
	Log LogConfig `mapstructure:"log"`
	AI  AIConfig  `mapstructure:"ai"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"`
	File  string `mapstructure:"file"`
}

type AIConfig struct {
	Platform string `mapstructure:"platform"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
	// Timeout and MinInterval are in seconds.
	Timeout     int `mapstructure:"timeout"`
	MinInterval int `mapstructure:"min_interval"`
	MaxRetries  int `mapstructure:"max_retries"`
}

// LoadOptions points Load at explicit files. Empty fields use the
// defaults.
type LoadOptions struct {
	File    string
	EnvFile string
}

// Load reads the configuration. A missing default config or .env file is
// not an error; a missing explicit File is.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "production")
	v.SetDefault("log.file", "")
	v.SetDefault("ai.platform", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.timeout", 30)
	v.SetDefault("ai.min_interval", 300)
	v.SetDefault("ai.max_retries", 3)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Dir returns $XDG_CONFIG_HOME/studyhall, or ~/.config/studyhall.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "studyhall"), nil
}

// DBPath returns the database path: flag, then config or env, then the
// XDG data dir. The parent directory is created.
func (c *Config) DBPath(flag string) (string, error) {
	for _, p := range []string{flag, c.DB} {
		if p != "" {
			return p, store.EnsureDir(p)
		}
	}
	return store.DefaultDBPath()
}

// LogOptions returns the logger options, writing to file when set.
func (c *Config) LogOptions() logger.Options {
	return logger.Options{Mode: c.Log.Mode, Level: c.Log.Level, Path: c.Log.File}
}

// LLM returns the provider configuration. Without a configured platform
// the conventional provider key variables are probed.
func (c *Config) LLM() llm.Config {
	cfg := llm.DefaultConfig()
	if c.AI.Platform == "" {
		found, ok := llm.DiscoverConfig()
		if !ok {
			cfg.Platform = ""
			return c.tune(cfg)
		}
		cfg = found
	} else {
		cfg.Platform = c.AI.Platform
	}

	cfg.APIKey = c.AI.APIKey
	if cfg.APIKey == "" {
		if p, ok := llm.Platforms[cfg.Platform]; ok && p.KeyEnv != "" {
			cfg.APIKey = os.Getenv(p.KeyEnv)
		}
	}
	cfg.BaseURL = c.AI.BaseURL
	cfg.Model = c.AI.Model
	return c.tune(cfg)
}

func (c *Config) tune(cfg llm.Config) llm.Config {
	if c.AI.Timeout > 0 {
		cfg.Timeout = time.Duration(c.AI.Timeout) * time.Second
	}
	if c.AI.MaxRetries > 0 {
		cfg.Retry.MaxAttempts = c.AI.MaxRetries
	}
	return cfg
}

// MinInterval returns the minimum time between encouragement requests.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.AI.MinInterval) * time.Second
}
