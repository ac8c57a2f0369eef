package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Plans    PlansConfig
	Queue    QueueConfig
	Search   SearchConfig
	AI       AIConfig
	Billing  BillingConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AuthConfig holds session and credential settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PlanLimits describes what a subscription plan entitles a user to.
// MaxCampaigns < 0 means unlimited.
type PlanLimits struct {
	MaxCampaigns        int
	MaxCommentsPerMonth int
}

// PlansConfig maps plan names to their limits. A user with no plan (or an
// unknown one) is entitled to nothing.
type PlansConfig struct {
	Limits map[string]PlanLimits
}

// QueueConfig holds extension claim-queue settings
type QueueConfig struct {
	BatchSize      int
	RateLimit      int           // claim calls per window per token
	RateWindow     time.Duration // sliding window size
	PostingTimeout time.Duration // revert stuck "posting" drafts after this; 0 disables
}

// SearchConfig holds discovery collaborator settings
type SearchConfig struct {
	YouTubeAPIKey   string
	RedditUserAgent string
	MaxResults      int
	Workers         int // concurrent target fetches per discovery run
}

// AIConfig holds text-generation collaborator settings
type AIConfig struct {
	OpenAIKey string
	Model     string
	Timeout   time.Duration
}

// BillingConfig holds the webhook shared secret
type BillingConfig struct {
	WebhookSecret string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "commentflow"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDurationEnv("JWT_TTL", 24*time.Hour),
		},
		Plans: PlansConfig{
			Limits: map[string]PlanLimits{
				"extension": {
					MaxCampaigns:        getIntEnv("PLAN_EXTENSION_MAX_CAMPAIGNS", 3),
					MaxCommentsPerMonth: getIntEnv("PLAN_EXTENSION_MAX_COMMENTS", 150),
				},
				"dfy": {
					MaxCampaigns:        getIntEnv("PLAN_DFY_MAX_CAMPAIGNS", -1),
					MaxCommentsPerMonth: getIntEnv("PLAN_DFY_MAX_COMMENTS", 1000),
				},
			},
		},
		Queue: QueueConfig{
			BatchSize:      getIntEnv("QUEUE_BATCH_SIZE", 5),
			RateLimit:      getIntEnv("QUEUE_RATE_LIMIT", 30),
			RateWindow:     getDurationEnv("QUEUE_RATE_WINDOW", time.Minute),
			PostingTimeout: getDurationEnv("QUEUE_POSTING_TIMEOUT", 15*time.Minute),
		},
		Search: SearchConfig{
			YouTubeAPIKey:   getEnv("YOUTUBE_API_KEY", ""),
			RedditUserAgent: getEnv("REDDIT_USER_AGENT", "commentflow/1.0"),
			MaxResults:      getIntEnv("SEARCH_MAX_RESULTS", 15),
			Workers:         getIntEnv("SEARCH_WORKERS", 4),
		},
		AI: AIConfig{
			OpenAIKey: getEnv("OPENAI_API_KEY", ""),
			Model:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout:   getDurationEnv("OPENAI_TIMEOUT", 60*time.Second),
		},
		Billing: BillingConfig{
			WebhookSecret: getEnv("BILLING_WEBHOOK_SECRET", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Queue.BatchSize < 1 {
		return fmt.Errorf("QUEUE_BATCH_SIZE must be at least 1")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// LimitsFor returns the limits for a plan. Unknown or empty plans entitle the
// user to nothing.
func (p *PlansConfig) LimitsFor(plan string) PlanLimits {
	if limits, ok := p.Limits[plan]; ok {
		return limits
	}
	return PlanLimits{MaxCampaigns: 0, MaxCommentsPerMonth: 0}
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
