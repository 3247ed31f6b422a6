package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	DraftStoreMongo = "mongo"
	DraftStoreRedis = "redis"
)

type Config struct {
	Port            string `yaml:"port"`
	SupabaseURL     string `yaml:"supabase_url"`
	SupabaseAnonKey string `yaml:"supabase_anon_key"`
	MongoDBURI      string `yaml:"mongodb_uri"`
	MongoDBPassword string `yaml:"mongodb_password"`
	MongoDBDatabase string `yaml:"mongodb_database"`
	RedisURL        string `yaml:"redis_url"`
	Environment     string `yaml:"environment"`
	LogLevel        string `yaml:"log_level"`

	// Booking calendar
	DraftStore    string        `yaml:"draft_store"` // "mongo" or "redis"
	DraftTTL      time.Duration `yaml:"draft_ttl"`
	PlatformFee   float64       `yaml:"platform_fee"`
	Timezone      string        `yaml:"timezone"` // IANA zone used for "today"
	LookaheadDays int           `yaml:"lookahead_days"`
	ExpiryCron    string        `yaml:"expiry_cron"`

	// Payment handoff
	KafkaBrokers      []string `yaml:"kafka_brokers"`
	KafkaPaymentTopic string   `yaml:"kafka_payment_topic"`

	CORSOrigins []string `yaml:"cors_origins"`
}

// LoadConfig reads CONFIG_FILE (if set) and then lets environment
// variables override it.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Port:              "8080",
		MongoDBDatabase:   "bashbay",
		Environment:       "development",
		LogLevel:          "info",
		DraftStore:        DraftStoreMongo,
		DraftTTL:          24 * time.Hour,
		PlatformFee:       10,
		Timezone:          "Local",
		LookaheadDays:     30,
		ExpiryCron:        "@every 1m",
		KafkaPaymentTopic: "booking.handoff",
		CORSOrigins:       []string{"http://localhost:3000"},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnvWithDefault("PORT", c.Port)
	c.SupabaseURL = getEnvWithDefault("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseAnonKey = getEnvWithDefault("SUPABASE_URL_ANON_KEY", c.SupabaseAnonKey)
	c.MongoDBURI = getEnvWithDefault("MONGODB_URI", c.MongoDBURI)
	c.MongoDBPassword = getEnvWithDefault("MONGODB_PASSWORD", c.MongoDBPassword)
	c.MongoDBDatabase = getEnvWithDefault("MONGODB_DATABASE", c.MongoDBDatabase)
	c.RedisURL = getEnvWithDefault("REDIS_URL", c.RedisURL)
	c.Environment = getEnvWithDefault("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)
	c.DraftStore = strings.ToLower(getEnvWithDefault("DRAFT_STORE", c.DraftStore))
	c.Timezone = getEnvWithDefault("TIMEZONE", c.Timezone)
	c.ExpiryCron = getEnvWithDefault("EXPIRY_CRON", c.ExpiryCron)
	c.KafkaPaymentTopic = getEnvWithDefault("KAFKA_PAYMENT_TOPIC", c.KafkaPaymentTopic)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitList(v)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("DRAFT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DRAFT_TTL must be a duration: %w", err)
		}
		c.DraftTTL = d
	}
	if v := os.Getenv("PLATFORM_FEE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PLATFORM_FEE must be a number: %w", err)
		}
		c.PlatformFee = f
	}
	if v := os.Getenv("LOOKAHEAD_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOOKAHEAD_DAYS must be an integer: %w", err)
		}
		c.LookaheadDays = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_URL_ANON_KEY is required")
	}

	switch c.DraftStore {
	case DraftStoreMongo:
		if c.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
		if c.MongoDBPassword == "" {
			return fmt.Errorf("MONGODB_PASSWORD is required")
		}
	case DraftStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when DRAFT_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported DRAFT_STORE: %s (expected mongo, redis)", c.DraftStore)
	}

	if c.PlatformFee < 0 {
		return fmt.Errorf("PLATFORM_FEE must not be negative")
	}
	if c.LookaheadDays <= 0 {
		return fmt.Errorf("LOOKAHEAD_DAYS must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" keeps the server's zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
