package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agenciacheck/pix-portal/internal/pix"
)

type Config struct {
	// Server
	Port    string
	BaseURL string

	// Database
	DatabaseURL string

	// PIX merchant
	PixKey          string
	PixMerchantName string
	PixMerchantCity string
	PixInitiation   pix.Initiation
	PixQRSize       int

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:     getEnv("DATABASE_URL", "file:./data/pix.db?_pragma=foreign_keys(1)"),
		PixKey:          strings.TrimSpace(getEnv("PIX_KEY", "")),
		PixMerchantName: getEnv("PIX_MERCHANT_NAME", ""),
		PixMerchantCity: getEnv("PIX_MERCHANT_CITY", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
	}

	// Validate required fields
	if cfg.PixKey == "" {
		return nil, fmt.Errorf("PIX_KEY is required")
	}
	if cfg.PixMerchantName == "" {
		return nil, fmt.Errorf("PIX_MERCHANT_NAME is required")
	}
	if cfg.PixMerchantCity == "" {
		return nil, fmt.Errorf("PIX_MERCHANT_CITY is required")
	}

	initiation, err := pix.ParseInitiation(getEnv("PIX_INITIATION", "dynamic"))
	if err != nil {
		return nil, fmt.Errorf("PIX_INITIATION: %w", err)
	}
	cfg.PixInitiation = initiation

	size, err := strconv.Atoi(getEnv("PIX_QR_SIZE", strconv.Itoa(pix.DefaultQRSize)))
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("PIX_QR_SIZE must be a positive number of pixels")
	}
	cfg.PixQRSize = size

	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// Merchant returns the configured receiver of every charge.
func (c *Config) Merchant() pix.Merchant {
	return pix.Merchant{
		Key:        c.PixKey,
		Name:       c.PixMerchantName,
		City:       c.PixMerchantCity,
		Initiation: c.PixInitiation,
	}
}

func (c *Config) ChargeURL(id string) string {
	return fmt.Sprintf("%s/api/pix/charges/%s", c.BaseURL, id)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
