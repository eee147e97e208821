package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config carries process-level settings loaded from the environment.
type Config struct {
	ServerPort string
	LogLevel   string

	MongoURI  string
	MongoDB   string
	RedisAddr string

	JWTSecret    string
	HostUsername string
	HostPassword string

	DareAPIURL     string
	DareAPIKey     string
	DareAPITimeout time.Duration
}

// Load reads configuration from .env and the environment.
func Load(logger zerolog.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort: getEnv("PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "dareroom"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		HostUsername: getEnv("HOST_USERNAME", "host"),
		HostPassword: getEnv("HOST_PASSWORD", "party"),

		DareAPIURL:     getEnv("DARE_API_URL", ""),
		DareAPIKey:     getEnv("DARE_API_KEY", ""),
		DareAPITimeout: getDuration("DARE_API_TIMEOUT", 10*time.Second),
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("mongo_db", cfg.MongoDB).
		Bool("dare_api_configured", cfg.DareAPIKey != "").
		Msg("configuration loaded")

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
