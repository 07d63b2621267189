package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	PaymentsAPIBaseURL string
	PaymentsAPIKey     string
	CatalogAPIBaseURL  string
	CatalogAPIKey      string
	UpstreamTimeout    time.Duration

	KafkaBrokers          []string
	PaymentResultsTopic   string
	ConsumerGroup         string
	PaymentSender         string
	OrdersTarget          string
	ConsumerRetryInterval time.Duration
	ConsumerMaxAttempts   int

	JWKSURL   string
	JWTSecret string

	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress            = ":3000"
	defaultUpstreamTimeout       = 10 * time.Second
	defaultPaymentResultsTopic   = "payment-results"
	defaultConsumerGroup         = "orders"
	defaultPaymentSender         = "payments"
	defaultOrdersTarget          = "orders"
	defaultConsumerRetryInterval = time.Second
	defaultConsumerMaxAttempts   = 5
	defaultShutdownTimeout       = 10 * time.Second

	cognitoJWKSURLTemplate = "https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		PaymentsAPIBaseURL:    getString(lookup, "PAYMENTS_API_BASE_URL", ""),
		PaymentsAPIKey:        getString(lookup, "PAYMENTS_API_KEY", ""),
		CatalogAPIBaseURL:     getString(lookup, "PRODUCTS_CATALOG_API_BASE_URL", ""),
		CatalogAPIKey:         getString(lookup, "PRODUCTS_CATALOG_API_KEY", ""),
		UpstreamTimeout:       getDuration(lookup, "UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
		PaymentResultsTopic:   getString(lookup, "PAYMENT_RESULTS_TOPIC", defaultPaymentResultsTopic),
		ConsumerGroup:         getString(lookup, "CONSUMER_GROUP_ID", defaultConsumerGroup),
		PaymentSender:         getString(lookup, "PAYMENT_MESSAGE_SENDER", defaultPaymentSender),
		OrdersTarget:          getString(lookup, "PAYMENT_MESSAGE_TARGET", defaultOrdersTarget),
		ConsumerRetryInterval: getDuration(lookup, "CONSUMER_RETRY_INTERVAL", defaultConsumerRetryInterval),
		ConsumerMaxAttempts:   getInt(lookup, "CONSUMER_MAX_ATTEMPTS", defaultConsumerMaxAttempts),
		JWKSURL:               getString(lookup, "JWKS_URL", ""),
		JWTSecret:             getString(lookup, "JWT_SECRET", ""),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	if cfg.JWKSURL == "" {
		region := getString(lookup, "COGNITO_REGION", "")
		pool := getString(lookup, "COGNITO_USER_POOL_ID", "")
		if region != "" && pool != "" {
			cfg.JWKSURL = fmt.Sprintf(cognitoJWKSURLTemplate, region, pool)
		}
	}

	// File-provided secrets take the place of their env values, so flags still win.
	secretFiles := []struct {
		env    string
		target *string
	}{
		{"JWT_SECRET_FILE", &cfg.JWTSecret},
		{"PAYMENTS_API_KEY_FILE", &cfg.PaymentsAPIKey},
		{"PRODUCTS_CATALOG_API_KEY_FILE", &cfg.CatalogAPIKey},
	}
	for _, sf := range secretFiles {
		path, ok := lookup(sf.env)
		if !ok || path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", strings.ToLower(sf.env), err)
		}
		*sf.target = strings.TrimSpace(string(content))
	}

	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		brokers            = getString(lookup, "KAFKA_BROKERS", "")
		upstreamTimeoutStr = cfg.UpstreamTimeout.String()
		consumerRetryStr   = cfg.ConsumerRetryInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PaymentsAPIBaseURL, "payments-url", cfg.PaymentsAPIBaseURL, "Payments API base URL")
	fs.StringVar(&cfg.PaymentsAPIKey, "payments-key", cfg.PaymentsAPIKey, "Payments API key")
	fs.StringVar(&cfg.CatalogAPIBaseURL, "catalog-url", cfg.CatalogAPIBaseURL, "Products catalog API base URL")
	fs.StringVar(&cfg.CatalogAPIKey, "catalog-key", cfg.CatalogAPIKey, "Products catalog API key")
	fs.StringVar(&upstreamTimeoutStr, "upstream-timeout", upstreamTimeoutStr, "Timeout for payment and catalog calls")
	fs.StringVar(&brokers, "kafka-brokers", brokers, "Comma separated Kafka brokers")
	fs.StringVar(&cfg.PaymentResultsTopic, "payment-topic", cfg.PaymentResultsTopic, "Topic with payment results")
	fs.StringVar(&cfg.ConsumerGroup, "consumer-group", cfg.ConsumerGroup, "Kafka consumer group")
	fs.StringVar(&cfg.PaymentSender, "payment-sender", cfg.PaymentSender, "Expected sender of payment messages")
	fs.StringVar(&cfg.OrdersTarget, "payment-target", cfg.OrdersTarget, "Expected target of payment messages")
	fs.StringVar(&consumerRetryStr, "consumer-retry", consumerRetryStr, "Delay between payment message retries")
	fs.IntVar(&cfg.ConsumerMaxAttempts, "consumer-attempts", cfg.ConsumerMaxAttempts, "Attempts per payment message")
	fs.StringVar(&cfg.JWKSURL, "jwks-url", cfg.JWKSURL, "JWKS endpoint for identity tokens")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Shared secret for HS256 identity tokens")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.UpstreamTimeout, err = time.ParseDuration(upstreamTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid upstream timeout: %w", err)
	}

	if cfg.ConsumerRetryInterval, err = time.ParseDuration(consumerRetryStr); err != nil {
		return nil, fmt.Errorf("invalid consumer retry interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitCSV(brokers)

	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = defaultUpstreamTimeout
	}

	if cfg.ConsumerRetryInterval <= 0 {
		cfg.ConsumerRetryInterval = defaultConsumerRetryInterval
	}

	if cfg.ConsumerMaxAttempts <= 0 {
		cfg.ConsumerMaxAttempts = defaultConsumerMaxAttempts
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PaymentsAPIBaseURL == "" {
		return nil, fmt.Errorf("payments API base URL must be provided")
	}

	if cfg.CatalogAPIBaseURL == "" {
		return nil, fmt.Errorf("products catalog API base URL must be provided")
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("kafka brokers must be provided")
	}

	if cfg.JWKSURL == "" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("either JWKS URL or JWT secret must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
