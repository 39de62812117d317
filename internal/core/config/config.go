package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	AnnualRate    decimal.Decimal
	MinAmount     decimal.Decimal
	PaybillNumber string
	WebhookURL    string
	Env           string
}

// LoadConfig reads the .env file and returns a Config struct
func LoadConfig() *Config {
	// The .env file might not exist in production, which is fine
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	return &Config{
		Port:          getEnv("PORT", "3000"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", "dev-insecure-secret"),
		AnnualRate:    getDecimal("ANNUAL_INTEREST_RATE", "0.15"),
		MinAmount:     getDecimal("MIN_TRANSACTION_AMOUNT", "50"),
		PaybillNumber: getEnv("PAYBILL_NUMBER", "4114517"),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		Env:           getEnv("ENV", "development"),
	}
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("Invalid decimal in env, using fallback", "key", key, "value", raw)
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}
