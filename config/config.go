package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency      int
	StalenessMinutes    int
	ElementWaitSeconds  int
	PageLoadWaitSeconds int
	MaxRetries          int

	ListenAddr     string
	JWTSecret      string
	JWTExpiryHours int

	ChromeBin string
	Debug     bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "opentrail"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "opentrail123"),
		PostgresDB:       getEnv("POSTGRES_DB", "trail_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency:      getEnvInt("MAX_CONCURRENCY", 1),
		StalenessMinutes:    getEnvInt("STALENESS_MINUTES", 10),
		ElementWaitSeconds:  getEnvInt("ELEMENT_WAIT_SECONDS", 10),
		PageLoadWaitSeconds: getEnvInt("PAGE_LOAD_WAIT_SECONDS", 5),
		MaxRetries:          getEnvInt("MAX_RETRIES", 3),

		ListenAddr:     getEnv("LISTEN_ADDR", ":3080"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-prod"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),

		ChromeBin: getEnv("CHROME_BIN", ""),
		Debug:     getEnvBool("DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
