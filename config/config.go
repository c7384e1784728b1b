package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// ErrMissingAPIKey is returned when SERPER_API_KEY is not configured
var ErrMissingAPIKey = errors.New("SERPER_API_KEY is required")

// RedisConfig configures the shared search-result cache
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Prefix   string
}

// S3Config configures optional snapshot uploads
type S3Config struct {
	Bucket       string
	Region       string
	Profile      string
	Prefix       string
	UsePathStyle bool
}

// KafkaConfig configures the optional refresh request consumer
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Config is the complete runtime configuration, loaded from the environment
type Config struct {
	Port            string
	GinMode         string
	SearchAPIKey    string
	SearchURL       string
	SearchTimeout   time.Duration
	CacheWindow     time.Duration
	DefaultLanguage string
	RefreshCron     string
	Redis           RedisConfig
	S3              S3Config
	Kafka           KafkaConfig
}

// RedisEnabled reports whether a Redis address was configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// S3Enabled reports whether snapshot uploads are configured
func (c *Config) S3Enabled() bool {
	return c.S3.Bucket != ""
}

// KafkaEnabled reports whether the refresh consumer should start
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// Load reads .env (if present) and the process environment.
// A missing search API key is a deployment defect and is returned as an error.
func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            GetEnvOrDefault("PORT", "8080"),
		GinMode:         GetEnvOrDefault("GIN_MODE", "release"),
		SearchAPIKey:    strings.TrimSpace(os.Getenv("SERPER_API_KEY")),
		SearchURL:       GetEnvOrDefault("SERPER_URL", SearchURL),
		DefaultLanguage: GetEnvOrDefault("DEFAULT_LANGUAGE", "fr"),
		RefreshCron:     GetEnvOrDefault("REFRESH_CRON", DefaultRefreshCron),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASS"),
			Prefix:   GetEnvOrDefault("CACHE_PREFIX", "libercare:"),
		},
		S3: S3Config{
			Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
			Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
			Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
			UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
		},
		Kafka: KafkaConfig{
			Topic:   GetEnvOrDefault("KAFKA_TOPIC", DefaultKafkaTopic),
			GroupID: GetEnvOrDefault("KAFKA_GROUP_ID", DefaultKafkaGroupID),
		},
	}

	if prefix := strings.TrimSpace(os.Getenv("S3_PREFIX")); prefix != "" {
		cfg.S3.Prefix = strings.Trim(prefix, "/") + "/"
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BOOTSTRAP_SERVERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	var err error
	if cfg.SearchTimeout, err = durationFromEnv("SEARCH_TIMEOUT", SearchTimeout); err != nil {
		return nil, err
	}
	if cfg.CacheWindow, err = durationFromEnv("CACHE_WINDOW", CacheWindow); err != nil {
		return nil, err
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return nil, fmt.Errorf("invalid REDIS_DB %q", v)
		}
		cfg.Redis.DB = db
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SearchAPIKey == "" {
		return ErrMissingAPIKey
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("invalid REFRESH_CRON %q: %w", c.RefreshCron, err)
	}
	return nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}
