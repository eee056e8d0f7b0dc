// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                 string  `mapstructure:"PORT"`
	Env                  string  `mapstructure:"APP_ENV"`
	StoreBackend         string  `mapstructure:"STORE_BACKEND"`
	StorePath            string  `mapstructure:"STORE_PATH"`
	SQLitePath           string  `mapstructure:"SQLITE_PATH"`
	DatabaseURL          string  `mapstructure:"DATABASE_URL"`
	RedisURL             string  `mapstructure:"REDIS_URL"`
	RedisPrefix          string  `mapstructure:"REDIS_PREFIX"`
	GeminiAPIKey         string  `mapstructure:"GEMINI_API_KEY"`
	GeminiChatModel      string  `mapstructure:"GEMINI_CHAT_MODEL"`
	GeminiFastModel      string  `mapstructure:"GEMINI_FAST_MODEL"`
	GeminiFallbackModels string  `mapstructure:"GEMINI_FALLBACK_MODELS"`
	CitizenPool          string  `mapstructure:"CITIZEN_POOL"`
	FeatureFlags         string  `mapstructure:"FEATURE_FLAGS"`
	AllowedOrigins       string  `mapstructure:"ALLOWED_ORIGINS"`
	TracingEnabled       bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter      string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint         string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio   float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from .env, file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8420")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("STORE_BACKEND", BackendFile)
	viper.SetDefault("STORE_PATH", "data/mooderia.json")
	viper.SetDefault("SQLITE_PATH", "data/mooderia.db")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_PREFIX", "mooderia:")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_CHAT_MODEL", "gemini-3-pro-preview")
	viper.SetDefault("GEMINI_FAST_MODEL", "gemini-3-flash-preview")
	viper.SetDefault("GEMINI_FALLBACK_MODELS", "gemini-2.5-flash")
	viper.SetDefault("CITIZEN_POOL", "NeoCitizen,VibeExplorer,CyberPanda")
	viper.SetDefault("FEATURE_FLAGS", "citizen_comment=on,citizen_repost=on")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.StoreBackend = strings.ToLower(strings.TrimSpace(config.StoreBackend))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendFile:
		if c.StorePath == "" {
			return errors.New("STORE_PATH is required for the file backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.IsProduction() {
		if c.GeminiAPIKey == "" {
			log.Println("WARNING: GEMINI_API_KEY is empty in production. Persona features will answer with fallback lines.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
		if c.StoreBackend == BackendMemory {
			log.Println("WARNING: STORE_BACKEND is 'memory' in production. State is lost on restart.")
		}
	}

	return nil
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Citizens returns the configured synthetic citizen identities.
func (c *Config) Citizens() []string {
	return splitList(c.CitizenPool)
}

// FallbackModels returns the models tried after the primary one fails.
func (c *Config) FallbackModels() []string {
	return splitList(c.GeminiFallbackModels)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
