package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	APIBaseURL  string        `mapstructure:"API_BASE_URL"`
	Offline     bool          `mapstructure:"OFFLINE"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`

	CurrentUserID string `mapstructure:"CURRENT_USER_ID"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`

	StoreBackend   string `mapstructure:"STORE_BACKEND"`
	StorePath      string `mapstructure:"STORE_PATH"`
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`

	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFormat  string `mapstructure:"LOG_FORMAT"`
}

// Store backends understood by the blob layer.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQL    = "sql"
	BackendRedis  = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("OFFLINE", false)
	v.SetDefault("HTTP_TIMEOUT", 15*time.Second)
	v.SetDefault("CURRENT_USER_ID", "00000000-0000-0000-0000-000000000001")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("STORE_BACKEND", BackendFile)
	v.SetDefault("STORE_PATH", ".tumatch")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "tumatch.db")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LISTEN_ADDR", ":8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// LoadConfig loads the configuration from a .env file in dir and environment variables.
// A missing .env file is not an error.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendFile, BackendSQL, BackendRedis:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if !c.Offline && c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required unless OFFLINE is set")
	}
	if c.CurrentUserID == "" {
		return errors.New("CURRENT_USER_ID is required")
	}
	return nil
}
