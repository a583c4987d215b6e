package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// SellerConfig holds the issuing company's legal and bank metadata printed
// on every invoice document.
type SellerConfig struct {
	Name        string
	Address     string
	TaxID       string
	BankName    string
	BankAccount string
	Email       string
	Phone       string
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     string
	// LogFormat is "json" or "pretty"
	LogFormat string

	// Database configuration
	PostgresDBURL string

	// Exchange rate API configuration
	ExchangeRateBaseURL string
	ExchangeRateTimeout time.Duration

	// Invoicing policy
	DomesticCountry            string
	StandardVatRate            decimal.Decimal
	DefaultPaymentMethod       string
	DefaultPaymentDeadlineDays int

	// Seller metadata
	Seller SellerConfig
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file. Using environment variables.")
	}

	config := &Config{
		// Server configuration
		Port:         getEnvInt("PORT", 8080),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 15)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 15)) * time.Second,
		LogLevel:     getEnvString("LOG_LEVEL", "info"),
		LogFormat:    getEnvString("LOG_FORMAT", "json"),

		// Database configuration
		PostgresDBURL: os.Getenv("POSTGRES_DB_URL"),

		// Exchange rate API configuration
		ExchangeRateBaseURL: getEnvString("EXCHANGE_RATE_BASE_URL", "https://api.nbp.pl/api"),
		ExchangeRateTimeout: time.Duration(getEnvInt("EXCHANGE_RATE_TIMEOUT", 10)) * time.Second,

		// Invoicing policy
		DomesticCountry:            getEnvString("DOMESTIC_COUNTRY", "PL"),
		StandardVatRate:            getEnvDecimal("STANDARD_VAT_RATE", "0.23"),
		DefaultPaymentMethod:       getEnvString("DEFAULT_PAYMENT_METHOD", "bank transfer"),
		DefaultPaymentDeadlineDays: getEnvInt("DEFAULT_PAYMENT_DEADLINE_DAYS", 30),

		// Seller metadata
		Seller: SellerConfig{
			Name:        os.Getenv("SELLER_NAME"),
			Address:     os.Getenv("SELLER_ADDRESS"),
			TaxID:       os.Getenv("SELLER_TAX_ID"),
			BankName:    os.Getenv("SELLER_BANK_NAME"),
			BankAccount: os.Getenv("SELLER_BANK_ACCOUNT"),
			Email:       os.Getenv("SELLER_EMAIL"),
			Phone:       os.Getenv("SELLER_PHONE"),
		},
	}

	validateConfig(config)

	return config, nil
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	if config.PostgresDBURL == "" {
		log.Println("Warning: No Postgres URL provided. Database connections will fail.")
	}

	if config.Seller.Name == "" || config.Seller.TaxID == "" {
		log.Println("Warning: Seller name or tax id not configured. Generated documents will be incomplete.")
	}

	if config.Seller.BankAccount == "" {
		log.Println("Warning: No seller bank account configured. Generated documents will be incomplete.")
	}
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool gets a boolean from an environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	valueStr = strings.ToLower(valueStr)
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}

// getEnvDecimal gets a decimal from an environment variable with a default value
func getEnvDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %s", key, valueStr, defaultValue)
		return decimal.RequireFromString(defaultValue)
	}

	return value
}
