package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all environment-driven settings for the service.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration

	// Text-generation capability
	AIEndpoint string
	AIAPIKey   string
	AIModel    string
	AITimeout  time.Duration

	// Mail relay
	ResendAPIKey string
	EmailFrom    string
	AppEnv       string

	OTPTTL time.Duration
}

// LoadConfig reads configuration from the environment, loading a .env
// file first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:       getEnv("DB_NAME", "planmaster"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret"),
		TokenExpiry:  getDurationEnv("TOKEN_EXPIRY_HOURS", 24) * time.Hour,
		AIEndpoint:   getEnv("AI_ENDPOINT", "https://api.aimlapi.com/chat/completions"),
		AIAPIKey:     getEnv("AI_API_KEY", ""),
		AIModel:      getEnv("AI_MODEL", "gpt-4o"),
		AITimeout:    getDurationEnv("AI_TIMEOUT_SECONDS", 60) * time.Second,
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "PlanMaster <no-reply@planmaster.app>"),
		AppEnv:       getEnv("APP_ENV", "development"),
		OTPTTL:       getDurationEnv("OTP_TTL_MINUTES", 10) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback int64) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(parsed)
		}
		logrus.WithField("key", key).Warn("Invalid duration value, using default")
	}
	return time.Duration(fallback)
}
