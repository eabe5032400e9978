// Package config loads service configuration: static settings from
// environment variables at startup, and runtime-adjustable limits from a
// watched YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AIConfig holds the language-model provider settings.
type AIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	UseMock bool
}

// ScrapeConfig holds the scraping API settings.
type ScrapeConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion      string
	DynamoDBTable  string
	EventBusName   string
	UseMemoryStore bool

	// External services
	AI     AIConfig
	Scrape ScrapeConfig

	// Dynamic limits file; empty disables the watcher
	DynamicConfigPath string

	// Logging and features
	LogLevel        string
	EnableMetrics   bool
	EnableTracing   bool
	TracingEndpoint string
	EnableCORS      bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable:  getEnv("TABLE_NAME", "sitecanvas"),
		EventBusName:   getEnv("EVENT_BUS_NAME", "sitecanvas-events"),
		UseMemoryStore: getEnvBool("USE_MEMORY_STORE", false),

		AI: AIConfig{
			BaseURL: getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  getEnv("AI_API_KEY", ""),
			Model:   getEnv("AI_MODEL", "gpt-4o-mini"),
			Timeout: getEnvDuration("AI_TIMEOUT", 60*time.Second),
			UseMock: getEnvBool("AI_USE_MOCK", false),
		},
		Scrape: ScrapeConfig{
			BaseURL: getEnv("SCRAPE_BASE_URL", ""),
			APIKey:  getEnv("SCRAPE_API_KEY", ""),
			Timeout: getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second),
		},

		DynamicConfigPath: getEnv("DYNAMIC_CONFIG_PATH", ""),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		EnableMetrics:   getEnvBool("ENABLE_METRICS", true),
		EnableTracing:   getEnvBool("ENABLE_TRACING", false),
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),
		EnableCORS:      getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required in production")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required in production")
		}
		if !c.AI.UseMock && c.AI.APIKey == "" {
			return fmt.Errorf("AI_API_KEY is required in production")
		}
		if c.UseMemoryStore {
			return fmt.Errorf("USE_MEMORY_STORE cannot be enabled in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
