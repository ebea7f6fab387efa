package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Env          string
	Port         string
	DBURL        string
	JWTSecret    string
	RedisURL     string
	RedisToken   string
	CookieDomain string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	LoginMaxAttempts  int
	LoginWindowMin    int
	MaxActiveSessions int

	AccessExpiryMin  int
	SessionExpiryMin int
	AdminExpiryMin   int
}

func Load() *Config {
	return &Config{
		Env:          getEnv("ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DBURL:        mustGetEnv("DB_URL"),
		JWTSecret:    mustGetEnv("JWT_SECRET"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisToken:   getEnv("REDIS_TOKEN", ""),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@tutorcat.app"),

		LoginMaxAttempts:  getEnvAsInt("LOGIN_MAX_ATTEMPTS", 10),
		LoginWindowMin:    getEnvAsInt("LOGIN_WINDOW_MIN", 15),
		MaxActiveSessions: getEnvAsInt("MAX_ACTIVE_SESSIONS", 3),

		AccessExpiryMin:  getEnvAsInt("ACCESS_TOKEN_EXPIRY", 1440),
		SessionExpiryMin: getEnvAsInt("SESSION_TOKEN_EXPIRY", 10080),
		AdminExpiryMin:   getEnvAsInt("ADMIN_TOKEN_EXPIRY", 480),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
