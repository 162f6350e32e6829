// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"yieldledger/internal/settings"
	"yieldledger/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort       string
	LogLevel         string
	MetricsNamespace string
	DB               db.Config
	RunMigrations    bool

	Redis       settings.RedisConfig
	SettingsTTL time.Duration

	AMQPURL     string
	AuditQueue  string
	AuditBuffer int

	DistributionSpec  string
	DistributionBatch int
	ExpirySpec        string
	DepositExpiry     time.Duration
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	auditBuffer, err := intEnv("AUDIT_BUFFER", 1024)
	if err != nil {
		return nil, err
	}
	batch, err := intEnv("DISTRIBUTION_BATCH", 500)
	if err != nil {
		return nil, err
	}
	settingsTTL, err := durationEnv("SETTINGS_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	depositExpiry, err := durationEnv("DEPOSIT_EXPIRY", 60*time.Minute)
	if err != nil {
		return nil, err
	}
	migrate, err := boolEnv("RUN_MIGRATIONS", true)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		ServerPort:       stringEnv("SERVER_PORT", "8080"),
		LogLevel:         stringEnv("LOG_LEVEL", "info"),
		MetricsNamespace: stringEnv("METRICS_NAMESPACE", "yieldledger"),
		DB: db.Config{
			Host:         stringEnv("DB_HOST", "localhost"),
			Port:         dbPort,
			User:         stringEnv("DB_USER", "user"),
			Password:     stringEnv("DB_PASSWORD", "password"),
			DBName:       stringEnv("DB_NAME", "yieldledger"),
			SSLMode:      stringEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: maxOpen,
		},
		RunMigrations: migrate,
		Redis: settings.RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"), // empty disables the settings cache
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		SettingsTTL:       settingsTTL,
		AMQPURL:           os.Getenv("AMQP_URL"), // empty disables the audit queue
		AuditQueue:        stringEnv("AUDIT_QUEUE", "yieldledger.audit"),
		AuditBuffer:       auditBuffer,
		DistributionSpec:  stringEnv("DISTRIBUTION_CRON", "0 */10 * * * *"),
		DistributionBatch: batch,
		ExpirySpec:        stringEnv("DEPOSIT_EXPIRY_CRON", "0 * * * * *"),
		DepositExpiry:     depositExpiry,
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
