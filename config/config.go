package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration. It is loaded once in main (or in a
// test helper) and handed to the services that need it, so the booking and
// payment logic never reads environment variables directly.
type Config struct {
	// Server
	Port string

	// Database
	DBConnectionString string

	// Redis
	RedisURL string

	// Paystack
	PaystackSecretKey  string
	PaystackPublicKey  string
	PaystackBaseURL    string
	PaystackCallback   string

	// Email
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPassword     string
	DefaultFromEmail string
	AdminEmail       string

	// Bookings
	MaxGuestsPerBooking int
}

// Load reads configuration from the environment, loading .env first when
// running outside a managed deployment.
func Load() *Config {
	if os.Getenv("RENDER") == "" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:               getEnv("PORT", "4000"),
		DBConnectionString: os.Getenv("DB_CONNECTION_STRING"),
		RedisURL:           getEnv("REDIS_URL", "localhost:6379"),

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackPublicKey: os.Getenv("PAYSTACK_PUBLIC_KEY"),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackCallback:  getEnv("PAYSTACK_CALLBACK_URL", "http://localhost:3000/payment/verify"),

		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		DefaultFromEmail: getEnv("DEFAULT_FROM_EMAIL", "noreply@sequoiaprojects.com"),
		AdminEmail:       getEnv("ADMIN_EMAIL", "admin@sequoiaprojects.com"),

		MaxGuestsPerBooking: getEnvInt("MAX_GUESTS_PER_BOOKING", 50),
	}

	if cfg.PaystackSecretKey == "" {
		log.Println("WARNING: PAYSTACK_SECRET_KEY not set, payment endpoints will be disabled")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
