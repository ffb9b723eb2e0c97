package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	DBMaxConns  int

	JWTSecret          string
	JWTIssuer          string
	JWTTTLMinutes      int
	ResetTokenTTLHours int

	OtpTTLMinutes        int
	OtpLength            int
	BcryptCost           int
	CookieExpirationDays int
	StoreTimeoutSeconds  int

	// Production toggles the cookie security attributes (Secure, SameSite=None).
	Production bool
	// Origin is the public frontend base URL embedded in reset links.
	Origin string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 8),

		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:          getEnv("JWT_ISSUER", "shoply-api"),
		JWTTTLMinutes:      getEnvInt("JWT_TTL_MINUTES", 60*24),
		ResetTokenTTLHours: getEnvInt("RESET_TOKEN_TTL_HOURS", 24),

		OtpTTLMinutes:        getEnvInt("OTP_TTL_MINUTES", 3),
		OtpLength:            getEnvInt("OTP_LENGTH", 4),
		BcryptCost:           getEnvInt("BCRYPT_COST", 10),
		CookieExpirationDays: getEnvInt("COOKIE_EXPIRATION_DAYS", 30),
		StoreTimeoutSeconds:  getEnvInt("STORE_TIMEOUT_SECONDS", 10),

		Production: getEnvBool("PRODUCTION", false),
		Origin:     getEnv("ORIGIN", "http://localhost:3000"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
