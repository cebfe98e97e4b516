package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Storage
	StorageBackend string // "redis" | "postgres" | "memory"
	RedisURL       string
	DatabaseURL    string

	// Auth
	JWTSecret      string
	AccessPasscode string

	// Gemini AI (empty key disables the coach)
	GeminiAPIKey         string
	GeminiConcurrentReqs int

	// Autosave
	AutosaveDebounceMS int

	// Workers
	WorkerCount int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		StorageBackend:       getEnvOrDefault("STORAGE_BACKEND", "redis"),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		AccessPasscode:       mustGetEnv("ACCESS_PASSCODE"),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 2),
		AutosaveDebounceMS:   getEnvAsIntOrDefault("AUTOSAVE_DEBOUNCE_MS", 1000),
		WorkerCount:          getEnvAsIntOrDefault("WORKER_COUNT", 2),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	switch cfg.StorageBackend {
	case "redis":
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case "memory":
	default:
		panic(fmt.Sprintf("unknown STORAGE_BACKEND %q", cfg.StorageBackend))
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
