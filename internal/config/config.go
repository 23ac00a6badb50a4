package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	RunAddress       string        `env:"RUN_ADDRESS"`
	DatabaseDSN      string        `env:"DATABASE_URI"`
	MigrationsDir    string        `env:"MIGRATIONS_DIR"`
	JWTUserSecret    string        `env:"JWT_USER_SECRET"`
	ProofDir         string        `env:"PROOF_DIR"`
	NotifyWebhookURL string        `env:"NOTIFY_WEBHOOK_URL"`
	OrderTTL         time.Duration `env:"ORDER_TTL"`
	PaymentTTL       time.Duration `env:"PAYMENT_TTL"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL"`
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTUserSecret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.JWTUserSecret, "j", "", "JWT secret key")
	flag.StringVar(&flagConfig.ProofDir, "p", "var/proofs", "Payment proof images directory")
	flag.StringVar(&flagConfig.NotifyWebhookURL, "n", "", "Notification service webhook URL (empty disables)")
	flag.DurationVar(&flagConfig.OrderTTL, "order-ttl", 24*time.Hour, "Pending order lifetime")
	flag.DurationVar(&flagConfig.PaymentTTL, "payment-ttl", 24*time.Hour, "Pending payment lifetime")
	flag.DurationVar(&flagConfig.SweepInterval, "sweep-interval", time.Minute, "Expiration sweeper interval")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:       defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:      defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:    defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTUserSecret:    defaultIfBlank(envConfig.JWTUserSecret, flagsConfig.JWTUserSecret),
		ProofDir:         defaultIfBlank(envConfig.ProofDir, flagsConfig.ProofDir),
		NotifyWebhookURL: defaultIfBlank(envConfig.NotifyWebhookURL, flagsConfig.NotifyWebhookURL),
		OrderTTL:         defaultIfZero(envConfig.OrderTTL, flagsConfig.OrderTTL),
		PaymentTTL:       defaultIfZero(envConfig.PaymentTTL, flagsConfig.PaymentTTL),
		SweepInterval:    defaultIfZero(envConfig.SweepInterval, flagsConfig.SweepInterval),
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func defaultIfZero(value time.Duration, defaultValue time.Duration) time.Duration {
	if value == 0 {
		return defaultValue
	}
	return value
}
