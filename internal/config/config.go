package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment
// variables. It is built once in main and passed by reference into the
// token service, auth service and request gate.
type Config struct {
	ServerPort string
	MySQLDSN   string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret             string
	AccessTokenTTL        time.Duration
	PasswordResetTokenTTL time.Duration

	// Brute-force protection. MaxLoginAttempts and LoginAttemptWindow are
	// clamped to the same ranges the reference enforces (3-10 attempts,
	// 5-30 minutes). CountFailuresOnly switches the window policy from
	// counting every attempt to counting failures only.
	MaxLoginAttempts   int
	LoginAttemptWindow time.Duration
	CountFailuresOnly  bool

	GoogleClientID string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FrontendURL  string

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/auth?charset=utf8mb4&parseTime=True&loc=Local"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:             getEnv("SECRET_KEY", "change-me"),
		AccessTokenTTL:        time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_HOURS", 48)) * time.Hour,
		PasswordResetTokenTTL: time.Duration(getEnvIntInRange("PASSWORD_RESET_TOKEN_EXPIRE", 60, 15, 120)) * time.Minute,

		MaxLoginAttempts:   getEnvIntInRange("MAX_LOGIN_ATTEMPTS", 5, 3, 10),
		LoginAttemptWindow: time.Duration(getEnvIntInRange("LOGIN_ATTEMPT_WINDOW", 15, 5, 30)) * time.Minute,
		CountFailuresOnly:  getEnvBool("LOGIN_ATTEMPT_COUNT_FAILURES_ONLY", false),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "465"),
		SMTPUser:     os.Getenv("EMAIL_SENDER"),
		SMTPPassword: os.Getenv("EMAIL_PASSWORD"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvIntInRange(key string, def, min, max int) int {
	v := getEnvInt(key, def)
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
