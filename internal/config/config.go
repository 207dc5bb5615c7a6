package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"storefront-service/internal/secrets"
)

// Config holds all configuration for the storefront service
type Config struct {
	// Server
	Port        string
	Environment string

	// Supplier API
	SupplierBaseURL string
	SupplierAPIKey  string

	// Pricing
	ExchangeRate    float64 // display currency per supplier USD
	DisplayCurrency string

	// Catalog cache
	ProductCacheTTL time.Duration
	RedisURL        string

	// Identity / document store
	GCPProjectID string

	// Payment gateway
	PaystackSecretKey   string
	PaystackPublicKey   string
	PaystackBaseURL     string
	PaystackFallbackURL string

	// Seller onboarding fee in minor currency units (kobo)
	SellerOnboardingFee int64
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		SupplierBaseURL: getEnv("CJ_API_BASE_URL", "https://developers.cjdropshipping.com/api2.0/v1"),
		SupplierAPIKey:  getEnv("CJ_API_KEY", ""),

		ExchangeRate:    getEnvAsFloat("NGN_PER_USD", 1600),
		DisplayCurrency: getEnv("DISPLAY_CURRENCY", "NGN"),

		ProductCacheTTL: getEnvAsDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
		RedisURL:        getEnv("REDIS_URL", ""),

		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),

		PaystackSecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackPublicKey:   getEnv("PAYSTACK_PUBLIC_KEY", ""),
		PaystackBaseURL:     getEnv("PAYSTACK_BASE_URL", ""),
		PaystackFallbackURL: getEnv("PAYSTACK_FALLBACK_URL", ""),

		// ₦2,000 in kobo.
		SellerOnboardingFee: getEnvAsInt64("SELLER_ONBOARDING_FEE", 2000*100),
	}

	if config.SupplierAPIKey == "" {
		log.Println("Warning: CJ_API_KEY not set, catalog will serve empty lists")
	}
	if config.GCPProjectID == "" {
		log.Println("Warning: GCP_PROJECT_ID not set, accounts and profiles will be disabled")
	}
	if config.PaystackSecretKey == "" {
		log.Println("Warning: PAYSTACK_SECRET_KEY not set, checkout will be disabled")
	}

	return config
}

// ApplySecrets overlays credentials from GCP Secret Manager onto values not
// already provided via environment variables.
func (c *Config) ApplySecrets(ctx context.Context, sm *secrets.GCPSecretManager) {
	secret, err := sm.GetSecret(ctx, sm.BuildSecretName(c.Environment))
	if err != nil {
		log.Printf("Warning: failed to load storefront secret: %v", err)
		return
	}

	if c.SupplierAPIKey == "" {
		c.SupplierAPIKey = secret.SupplierAPIKey
	}
	if c.PaystackSecretKey == "" {
		c.PaystackSecretKey = secret.PaystackSecretKey
	}
	if c.PaystackPublicKey == "" {
		c.PaystackPublicKey = secret.PaystackPublicKey
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 gets an environment variable as an int64 with a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
