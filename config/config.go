package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	JWTSecret     string
	AllowedOrigin string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// Cache
	CacheCouponTTL  time.Duration
	CacheVariantTTL time.Duration
	// Payment gateway
	GatewayKeyID     string
	GatewayKeySecret string
	GatewayBaseURL   string
	PaymentIntentTTL time.Duration
	// Background sweeper
	SweepInterval time.Duration
	// Business Rules (minor units where monetary)
	MaxCartQuantity       int
	CODCeiling            int64
	ShippingFee           int64
	FreeShippingThreshold int64
	WalletPageSize        int
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: Try loading .env (standard local dev)
		// We don't error here because in pure docker/prod envs, .env might not exist,
		// and we rely on system env vars.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 50),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 10),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		// Cache defaults: 5m coupon listings, 1m variant lookups
		CacheCouponTTL:  getDurationEnv("CACHE_COUPON_TTL", 5*time.Minute),
		CacheVariantTTL: getDurationEnv("CACHE_VARIANT_TTL", time.Minute),

		GatewayKeyID:     getEnv("GATEWAY_KEY_ID", ""),
		GatewayKeySecret: getEnv("GATEWAY_KEY_SECRET", ""),
		GatewayBaseURL:   getEnv("GATEWAY_BASE_URL", "https://api.razorpay.com/v1"),
		PaymentIntentTTL: getDurationEnv("PAYMENT_INTENT_TTL", 30*time.Minute),

		SweepInterval: getDurationEnv("SWEEP_INTERVAL", 10*time.Minute),

		MaxCartQuantity:       getIntEnv("MAX_CART_QUANTITY", 10),
		CODCeiling:            getInt64Env("COD_CEILING", 1000),
		ShippingFee:           getInt64Env("SHIPPING_FEE", 50),
		FreeShippingThreshold: getInt64Env("FREE_SHIPPING_THRESHOLD", 500),
		WalletPageSize:        getIntEnv("WALLET_PAGE_SIZE", 5),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.GatewayKeyID == "" || c.GatewayKeySecret == "" {
		log.Println("WARNING: Payment gateway credentials missing; online payments will fail.")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}
