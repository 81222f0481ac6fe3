package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	LLM      LLMConfig
	History  HistoryConfig
}

// PipelineConfig holds extraction pipeline configuration
type PipelineConfig struct {
	TopicCount int
	Workers    int
}

// LLMConfig holds AI-backend configuration. An empty APIKey means the
// capability is absent and the pipeline runs in pure fallback mode.
type LLMConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	Timeout      time.Duration
	CallInterval time.Duration
}

// HistoryConfig holds the optional run-history store location.
type HistoryConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			TopicCount: getEnvAsInt("DEPOINDEX_TOPICS", 5),
			Workers:    getEnvAsInt("DEPOINDEX_WORKERS", 4),
		},
		LLM: LLMConfig{
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			BaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature:  getEnvAsFloat32("OPENAI_TEMPERATURE", 0.3),
			Timeout:      getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			CallInterval: getEnvAsDuration("DEPOINDEX_CALL_INTERVAL", 1500*time.Millisecond),
		},
		History: HistoryConfig{
			Path: getEnv("DEPOINDEX_HISTORY_DB", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. A missing API key is not an
// error; it selects fallback mode.
func (c *Config) Validate() error {
	if c.Pipeline.TopicCount < 1 || c.Pipeline.TopicCount > 10 {
		return NewAppError("CONFIG_ERROR", "topic count must be between 1 and 10", ErrValidation)
	}
	if c.Pipeline.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "worker count must be positive", ErrValidation)
	}
	if c.LLM.CallInterval < 0 {
		return NewAppError("CONFIG_ERROR", "call interval must not be negative", ErrValidation)
	}
	return nil
}
