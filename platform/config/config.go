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

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RateLimitConfig provides per-IP rate limit settings for the public API.
type RateLimitConfig interface {
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// SchedulerConfig provides settings for delayed task dispatch.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSchedulerPollInterval() time.Duration
	GetSweepInterval() time.Duration
	IsDistributedScheduler() bool
}

// StoreConfig provides settings for the lead session store.
type StoreConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetLeadSessionTTL() time.Duration
	UseRedisStore() bool
}

// EmailConfig provides settings for sequence email delivery.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetEmailSenderName() string
}

// AnalyticsConfig provides settings for the routing audit trail.
type AnalyticsConfig interface {
	GetKafkaBrokers() []string
	GetKafkaAnalyticsTopic() string
	IsKafkaEnabled() bool
}

// ChatConfig provides settings for the chat advisor.
type ChatConfig interface {
	GetChatTypingDelayMin() time.Duration
	GetChatTypingDelayMax() time.Duration
}

// LeadsConfig provides settings for the lead lifecycle service.
type LeadsConfig interface {
	GetPhoneDefaultRegion() string
	GetAutoRoute() bool
	GetSalesAlertCooldown() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RateLimitRPS          float64
	RateLimitBurst        int
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	SchedulerPollInterval time.Duration
	SweepInterval         time.Duration
	LeadSessionTTL        time.Duration
	EmailEnabled          bool
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	EmailFromName         string
	EmailFromAddress      string
	EmailSenderName       string
	KafkaBrokers          []string
	KafkaAnalyticsTopic   string
	ChatTypingDelayMin    time.Duration
	ChatTypingDelayMax    time.Duration
	PhoneDefaultRegion    string
	AutoRoute             bool
	SalesAlertCooldown    time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RateLimitConfig implementation
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                     { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool               { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string               { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int                { return c.AsynqConcurrency }
func (c *Config) GetSchedulerPollInterval() time.Duration { return c.SchedulerPollInterval }
func (c *Config) GetSweepInterval() time.Duration         { return c.SweepInterval }

// IsDistributedScheduler reports whether delayed work goes through asynq.
// Tasks then run in the scheduler worker, which can only see leads kept in Redis.
func (c *Config) IsDistributedScheduler() bool { return c.RedisURL != "" }

// StoreConfig implementation
func (c *Config) GetLeadSessionTTL() time.Duration { return c.LeadSessionTTL }
func (c *Config) UseRedisStore() bool              { return c.RedisURL != "" }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetEmailSenderName() string  { return c.EmailSenderName }

// AnalyticsConfig implementation
func (c *Config) GetKafkaBrokers() []string      { return c.KafkaBrokers }
func (c *Config) GetKafkaAnalyticsTopic() string { return c.KafkaAnalyticsTopic }
func (c *Config) IsKafkaEnabled() bool           { return len(c.KafkaBrokers) > 0 }

// ChatConfig implementation
func (c *Config) GetChatTypingDelayMin() time.Duration { return c.ChatTypingDelayMin }
func (c *Config) GetChatTypingDelayMax() time.Duration { return c.ChatTypingDelayMax }

// LeadsConfig implementation
func (c *Config) GetPhoneDefaultRegion() string        { return c.PhoneDefaultRegion }
func (c *Config) GetAutoRoute() bool                   { return c.AutoRoute }
func (c *Config) GetSalesAlertCooldown() time.Duration { return c.SalesAlertCooldown }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true")

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitRPS:          mustFloat(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst:        mustInt(getEnv("RATE_LIMIT_BURST", "20")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "funnel"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		SchedulerPollInterval: mustDuration(getEnv("SCHEDULER_POLL_INTERVAL", "1s")),
		SweepInterval:         mustDuration(getEnv("LEAD_SWEEP_INTERVAL", "1h")),
		LeadSessionTTL:        mustDuration(getEnv("LEAD_SESSION_TTL", "720h")),
		EmailEnabled:          emailEnabled,
		SMTPHost:              smtpHost,
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "Career Success Team"),
		EmailFromAddress:      getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailSenderName:       getEnv("EMAIL_SENDER_NAME", "Alex from the Career Success Team"),
		KafkaBrokers:          splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaAnalyticsTopic:   getEnv("KAFKA_ANALYTICS_TOPIC", "funnel.routing.audit"),
		ChatTypingDelayMin:    mustDuration(getEnv("CHAT_TYPING_DELAY_MIN", "1s")),
		ChatTypingDelayMax:    mustDuration(getEnv("CHAT_TYPING_DELAY_MAX", "3s")),
		PhoneDefaultRegion:    strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "IN")),
		AutoRoute:             strings.EqualFold(getEnv("ROUTING_AUTO", "true"), "true"),
		SalesAlertCooldown:    mustDuration(getEnv("SALES_ALERT_COOLDOWN", "1h")),
	}

	if cfg.EmailEnabled && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is required when EMAIL_ENABLED is true")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.ChatTypingDelayMax < cfg.ChatTypingDelayMin {
		return nil, fmt.Errorf("CHAT_TYPING_DELAY_MAX must not be smaller than CHAT_TYPING_DELAY_MIN")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if cfg.SchedulerPollInterval <= 0 {
		return nil, fmt.Errorf("SCHEDULER_POLL_INTERVAL must be a positive duration")
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
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
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
