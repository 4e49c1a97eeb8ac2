package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/roastume/constants"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Extract ExtractConfig
	LLM     LLMConfig
	Jobs    JobsConfig
	Log     LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr        string
	MetricsAddr     string
	MaxUploadBytes  int
	ShutdownTimeout time.Duration
}

// ExtractConfig holds text-extraction configuration
type ExtractConfig struct {
	Pdftotext string
	MaxPages  int
}

// LLMConfig holds review-generation configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// JobsConfig holds background execution configuration
type JobsConfig struct {
	MaxConcurrent  int
	ProcessTimeout time.Duration
	TTL            time.Duration // 0 disables eviction
	SweepInterval  time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // "json" | "text"
}

// LoadConfig loads configuration from .env files and environment variables.
// Real environment variables win over values from .env files.
func LoadConfig() *Config {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
	return &Config{
		Server: ServerConfig{
			GRPCAddr:        getEnv("GRPC_ADDR", ":8080"),
			MetricsAddr:     getEnv("METRICS_ADDR", ":9090"),
			MaxUploadBytes:  getEnvAsInt("MAX_UPLOAD_BYTES", constants.MaxUploadBytes),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Extract: ExtractConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			MaxPages:  getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
			Model:       getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			APIKey:      getEnv("DEEPSEEK_API_KEY", ""),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.7),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 2000),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Jobs: JobsConfig{
			MaxConcurrent:  getEnvAsInt("JOB_MAX_CONCURRENT", 8),
			ProcessTimeout: getEnvAsDuration("JOB_PROCESS_TIMEOUT", 3*time.Minute),
			TTL:            getEnvAsDuration("JOB_TTL", 0),
			SweepInterval:  getEnvAsDuration("JOB_SWEEP_INTERVAL", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "DEEPSEEK_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_BYTES must be positive", ErrInvalidInput)
	}
	if c.LLM.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "LLM_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Jobs.MaxConcurrent <= 0 {
		return NewAppError("CONFIG_ERROR", "JOB_MAX_CONCURRENT must be positive", ErrInvalidInput)
	}
	if c.Jobs.TTL > 0 && c.Jobs.SweepInterval <= 0 {
		return NewAppError("CONFIG_ERROR", "JOB_SWEEP_INTERVAL must be positive when JOB_TTL is set", ErrInvalidInput)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return NewAppError("CONFIG_ERROR", "LOG_FORMAT must be json or text", ErrInvalidInput)
	}
	return nil
}
