package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"event_planner"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTAccessSecret string `envconfig:"JWT_ACCESS_SECRET" required:"true"`

	// ✅ Redis Config (empty address disables the zone cache and keeps the limiter in memory)
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// ✅ Kafka Config (no brokers means events are not published)
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"planner.events"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	CORSOrigins        []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:4173"`
	RateLimitPerMinute int64    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"100"`

	// ✅ Scheduling rules
	ConflictWindowDays int           `envconfig:"CONFLICT_WINDOW_DAYS" default:"31"`
	MaxOccurrenceDays  int           `envconfig:"MAX_OCCURRENCE_DAYS" default:"366"`
	TimezoneCacheTTL   time.Duration `envconfig:"TIMEZONE_CACHE_TTL" default:"10m"`

	// ✅ Draft cleanup
	DraftTTL    time.Duration `envconfig:"DRAFT_TTL" default:"168h"`
	CleanupCron string        `envconfig:"CLEANUP_CRON" default:"0 3 * * *"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET must not be empty")
	}
	if cfg.ConflictWindowDays <= 0 {
		return nil, fmt.Errorf("CONFLICT_WINDOW_DAYS must be positive, got %d", cfg.ConflictWindowDays)
	}
	if cfg.MaxOccurrenceDays <= 0 {
		return nil, fmt.Errorf("MAX_OCCURRENCE_DAYS must be positive, got %d", cfg.MaxOccurrenceDays)
	}
	return &cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}
