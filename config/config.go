// Package config provides configuration for the debate orchestrator.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/aidebate/arena/domain"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// LLM backend (any OpenAI-compatible chat completions endpoint)
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration
	Temperature float64
	MaxTokens   int

	// Debate defaults
	DefaultRounds   int
	DispatchPolicy  domain.DispatchPolicy
	AdmissionPolicy string // rego source; empty means built-in default

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:    getEnv("DATABASE_URL", "file:arena.db?cache=shared&mode=rwc"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "llama3.2:3b"),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		Temperature:    getEnvFloat("LLM_TEMPERATURE", 0.8),
		MaxTokens:      getEnvInt("LLM_MAX_TOKENS", 500),
		DefaultRounds:  getEnvInt("DEBATE_ROUNDS", 3),
		DispatchPolicy: domain.DispatchPolicy(getEnv("DEBATE_DISPATCH", string(domain.DispatchConcurrent))),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	if !cfg.DispatchPolicy.Valid() {
		cfg.DispatchPolicy = domain.DispatchConcurrent
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
