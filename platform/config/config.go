// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// IntentConfig provides settings for the purchase-intent engine.
type IntentConfig interface {
	GetDecayRatePerHour() float64
	GetHistoryCapacity() int
	GetProductInterestCapacity() int
	GetHysteresisMargin() int
	GetTaxonomyPath() string
}

// SchedulerConfig provides settings for the asynq turn queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// WhatsAppConfig provides settings for the outbound WhatsApp gateway.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
}

// NotificationConfig provides settings for agent alerting.
type NotificationConfig interface {
	GetAgentAlertPhone() string
}

// WebhookConfig provides settings for the classifier webhook ingress.
type WebhookConfig interface {
	GetWebhookAPIKey() string
	GetWebhookRatePerSecond() float64
	GetWebhookRateBurst() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	DecayRatePerHour        float64
	HistoryCapacity         int
	ProductInterestCapacity int
	HysteresisMargin        int
	TaxonomyPath            string
	WhatsAppURL             string
	WhatsAppKey             string
	WhatsAppDeviceID        string
	AgentAlertPhone         string
	WebhookAPIKey           string
	WebhookRatePerSecond    float64
	WebhookRateBurst        int
	ShutdownTimeout         time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool { return c.CORSAllowCreds }

// IntentConfig implementation
func (c *Config) GetDecayRatePerHour() float64 { return c.DecayRatePerHour }
func (c *Config) GetHistoryCapacity() int { return c.HistoryCapacity }
func (c *Config) GetProductInterestCapacity() int { return c.ProductInterestCapacity }
func (c *Config) GetHysteresisMargin() int { return c.HysteresisMargin }
func (c *Config) GetTaxonomyPath() string { return c.TaxonomyPath }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int { return c.AsynqConcurrency }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppURL() string { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }

// NotificationConfig implementation
func (c *Config) GetAgentAlertPhone() string { return c.AgentAlertPhone }

// WebhookConfig implementation
func (c *Config) GetWebhookAPIKey() string { return c.WebhookAPIKey }
func (c *Config) GetWebhookRatePerSecond() float64 { return c.WebhookRatePerSecond }
func (c *Config) GetWebhookRateBurst() int { return c.WebhookRateBurst }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "intent-turns"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		DecayRatePerHour:        mustFloat(getEnv("INTENT_DECAY_RATE_PER_HOUR", "0.1667")),
		HistoryCapacity:         mustInt(getEnv("INTENT_HISTORY_CAPACITY", "50")),
		ProductInterestCapacity: mustInt(getEnv("INTENT_PRODUCT_CAPACITY", "20")),
		HysteresisMargin:        mustInt(getEnv("INTENT_HYSTERESIS_MARGIN", "5")),
		TaxonomyPath:            getEnv("INTENT_TAXONOMY_PATH", ""),
		WhatsAppURL:             getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:             getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID:        getEnv("WHATSAPP_DEVICE_ID", ""),
		AgentAlertPhone:         getEnv("AGENT_ALERT_PHONE", ""),
		WebhookAPIKey:           getEnv("WEBHOOK_API_KEY", ""),
		WebhookRatePerSecond:    mustFloat(getEnv("WEBHOOK_RATE_PER_SECOND", "20")),
		WebhookRateBurst:        mustInt(getEnv("WEBHOOK_RATE_BURST", "40")),
		ShutdownTimeout:         mustDuration(getEnv("SHUTDOWN_TIMEOUT", "15s")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DecayRatePerHour < 0 {
		return nil, fmt.Errorf("INTENT_DECAY_RATE_PER_HOUR must not be negative")
	}
	if cfg.HistoryCapacity < 1 {
		return nil, fmt.Errorf("INTENT_HISTORY_CAPACITY must be at least 1")
	}
	if cfg.ProductInterestCapacity < 1 {
		return nil, fmt.Errorf("INTENT_PRODUCT_CAPACITY must be at least 1")
	}
	if cfg.HysteresisMargin < 0 {
		return nil, fmt.Errorf("INTENT_HYSTERESIS_MARGIN must not be negative")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
