package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const PROD_STRING = "prod"

// Notification drivers.
const (
	NotifyDriverLog   = "log"
	NotifyDriverEmail = "email"
	NotifyDriverRedis = "redis"
)

// zeroDecimalCurrencies have no minor unit and cannot carry 2-decimal amounts.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "ISK": {}, "JPY": {}, "KMF": {}, "KRW": {},
	"PYG": {}, "RWF": {}, "UGX": {}, "UYI": {}, "VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int
	LogLevel          string

	RateLimitPerMinute int
	RateLimitBurst     int

	TaxRate     decimal.Decimal
	Currency    string
	MaxPageSize int

	Notify NotifyConfig
}

// NotifyConfig selects and configures the booking notification sink.
type NotifyConfig struct {
	Driver  string
	Timeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string
	AdminEmail string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PROD_ORIGINS", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 300)
	v.SetDefault("RATE_LIMIT_BURST", 50)
	v.SetDefault("TAX_RATE", "0.125")
	v.SetDefault("CURRENCY", "USD")
	v.SetDefault("MAX_PAGE_SIZE", 100)

	v.SetDefault("NOTIFY_DRIVER", NotifyDriverLog)
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CHANNEL", "bookings.created")
	v.SetDefault("SMTP_PORT", 587)

	// Required keys have no default; bind them so AutomaticEnv picks them up on Get.
	for _, key := range []string{"DB_DSN", "JWT_SECRET", "SMTP_HOST", "SMTP_USER", "SMTP_PASS", "SMTP_FROM", "BOOKING_ADMIN_EMAIL"} {
		_ = v.BindEnv(key)
	}
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.ProdOrigins = v.GetString("PROD_ORIGINS")
	cfg.IsProduction = v.GetString("APP_ENV") == PROD_STRING
	cfg.HTTPAddr = v.GetString("HTTP_ADDR")
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	// Database DSN is required
	cfg.DBDSN = v.GetString("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttl, err := time.ParseDuration(v.GetString("JWT_ACCESS_TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	if cfg.BcryptCost, err = getInt(v, "BCRYPT_COST"); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt(v, "RATE_LIMIT_PER_MINUTE"); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt(v, "RATE_LIMIT_BURST"); err != nil {
		return nil, err
	}
	if cfg.MaxPageSize, err = getInt(v, "MAX_PAGE_SIZE"); err != nil {
		return nil, err
	}

	cfg.TaxRate, err = decimal.NewFromString(v.GetString("TAX_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	if cfg.TaxRate.IsNegative() {
		return nil, fmt.Errorf("invalid TAX_RATE: must not be negative")
	}

	cfg.Currency = strings.ToUpper(strings.TrimSpace(v.GetString("CURRENCY")))
	if len(cfg.Currency) != 3 {
		return nil, fmt.Errorf("invalid CURRENCY %q: expected a 3-letter code", cfg.Currency)
	}
	if _, ok := zeroDecimalCurrencies[cfg.Currency]; ok {
		return nil, fmt.Errorf("invalid CURRENCY %q: amounts are kept to 2 decimal places", cfg.Currency)
	}

	if cfg.Notify, err = loadNotify(v); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadNotify(v *viper.Viper) (NotifyConfig, error) {
	n := NotifyConfig{
		Driver:        strings.ToLower(v.GetString("NOTIFY_DRIVER")),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisChannel:  v.GetString("REDIS_CHANNEL"),
		SMTPHost:      v.GetString("SMTP_HOST"),
		SMTPUser:      v.GetString("SMTP_USER"),
		SMTPPass:      v.GetString("SMTP_PASS"),
		SMTPFrom:      v.GetString("SMTP_FROM"),
		AdminEmail:    v.GetString("BOOKING_ADMIN_EMAIL"),
	}

	timeout, err := time.ParseDuration(v.GetString("NOTIFY_TIMEOUT"))
	if err != nil {
		return n, fmt.Errorf("invalid NOTIFY_TIMEOUT: %w", err)
	}
	n.Timeout = timeout

	if n.RedisDB, err = getInt(v, "REDIS_DB"); err != nil {
		return n, err
	}
	if n.SMTPPort, err = getInt(v, "SMTP_PORT"); err != nil {
		return n, err
	}

	switch n.Driver {
	case NotifyDriverLog, NotifyDriverRedis:
	case NotifyDriverEmail:
		if n.SMTPHost == "" || n.AdminEmail == "" {
			return n, fmt.Errorf("SMTP_HOST and BOOKING_ADMIN_EMAIL are required for the email notify driver")
		}
	default:
		return n, fmt.Errorf("invalid NOTIFY_DRIVER %q", n.Driver)
	}

	return n, nil
}

// getInt reads key as an integer.
// It returns an error if the variable is set but is not a valid integer.
func getInt(v *viper.Viper, key string) (int, error) {
	raw := v.GetString(key)
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, raw, err)
	}
	return val, nil
}
