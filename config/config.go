package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration (user notification channels)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Payment provider configuration
	PaymentProvider    string
	PaystackSecretKey  string
	PaystackPublicKey  string
	PaystackBaseURL    string
	PaystackPNSubKey   string
	PaystackPNUUID     string
	PaystackPNChannel  string
	Currency           string

	// Checkout configuration
	CheckoutTimeout time.Duration
	OrdersPageSize  int

	// Badge configuration
	BadgeRefreshInterval time.Duration

	// Rate limiting
	CheckoutRateLimit  int
	CheckoutRateWindow time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Payment
		PaymentProvider:   getEnv("PAYMENT_PROVIDER", "paystack"),
		PaystackSecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackPublicKey: getEnv("PAYSTACK_PUBLIC_KEY", ""),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackPNSubKey:  getEnv("PAYSTACK_PN_SUB_KEY", ""),
		PaystackPNUUID:    getEnv("PAYSTACK_PN_UUID", ""),
		PaystackPNChannel: getEnv("PAYSTACK_PN_CHANNEL", ""),
		Currency:          getEnv("CURRENCY", "NGN"),

		// Checkout
		CheckoutTimeout: getEnvAsDuration("CHECKOUT_TIMEOUT", "15m"),
		OrdersPageSize:  getEnvAsInt("ORDERS_PAGE_SIZE", 5),

		// Badge
		BadgeRefreshInterval: getEnvAsDuration("BADGE_REFRESH_INTERVAL", "30s"),

		// Rate limiting
		CheckoutRateLimit:  getEnvAsInt("CHECKOUT_RATE_LIMIT", 10),
		CheckoutRateWindow: getEnvAsDuration("CHECKOUT_RATE_WINDOW", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
