package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port        string
	Store       string
	DatabaseURL string

	LogLevel  string
	LogFormat string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	JWTSecret             string
	AuthRequiredForWrites bool
	AdminEmail            string
	AdminPassword         string

	Stripe   StripeConfig
	Notify   NotifyConfig
	Jobs     JobsConfig
	Currency string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// Enabled reports whether payment endpoints can talk to Stripe.
func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

type NotifyConfig struct {
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
}

type JobsConfig struct {
	Schedule          string
	PendingBookingTTL time.Duration
}

// Load reads a .env file when present and builds the Config from the
// process environment.
func Load() (*Config, error) {
	// .env es opcional, en produccion las variables vienen del entorno
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Store:       strings.ToLower(getEnv("STORE", StorePostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/payments/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/payments/cancel?session_id={CHECKOUT_SESSION_ID}"),
		},
		Notify: NotifyConfig{
			SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
			SendGridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
			SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Travel App"),
			TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
			TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
			TwilioFromNumber:  os.Getenv("TWILIO_FROM_NUMBER"),
		},
		Currency: strings.ToLower(getEnv("CURRENCY", "usd")),
	}

	var err error
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "0"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if cfg.AuthRequiredForWrites, err = strconv.ParseBool(getEnv("AUTH_REQUIRED_FOR_WRITES", "false")); err != nil {
		return nil, fmt.Errorf("invalid AUTH_REQUIRED_FOR_WRITES: %w", err)
	}

	cfg.Jobs.Schedule = getEnv("JOB_SCHEDULE", "@every 15m")
	if cfg.Jobs.PendingBookingTTL, err = time.ParseDuration(getEnv("PENDING_BOOKING_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid PENDING_BOOKING_TTL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.AuthRequiredForWrites && c.JWTSecret == "" {
		return errors.New("AUTH_REQUIRED_FOR_WRITES needs JWT_SECRET")
	}
	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	if c.Jobs.PendingBookingTTL <= 0 {
		return errors.New("PENDING_BOOKING_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
