package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8081"`

	BackendURL     string        `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	StaffID        string        `env:"STAFF_ID" envDefault:""`

	AllocationStrategy string `env:"ALLOCATION_STRATEGY" envDefault:"server"`
	MaxWishRank        int    `env:"MAX_WISH_RANK" envDefault:"3"`

	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CacheShards int           `env:"CACHE_SHARDS" envDefault:"16"`

	JournalDriver   string `env:"JOURNAL_DRIVER" envDefault:"postgres"`
	DatabaseURL     string `env:"DATABASE_URL" envDefault:""`
	PostgresHost    string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort    string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser    string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPass    string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB      string `env:"POSTGRES_DB" envDefault:"dispatch"`
	PostgresSSLMode string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	KafkaEnabled      bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers      string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaRequestTopic string `env:"KAFKA_REQUEST_TOPIC" envDefault:"dispatch-requests"`
	KafkaEventTopic   string `env:"KAFKA_EVENT_TOPIC" envDefault:"delivery-events"`
	KafkaDLQTopic     string `env:"KAFKA_DLQ_TOPIC" envDefault:"dispatch-requests-dlq"`
	KafkaGroupID      string `env:"KAFKA_GROUP_ID" envDefault:"workshop-dispatch"`

	JsonStaticRequestPath string `env:"JSON_STATIC_REQUEST_PATH" envDefault:"testdata/request.json"`
}

func LoadConfig() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config parse: %w", err)
	}
	switch c.AllocationStrategy {
	case "local", "server":
	default:
		return Config{}, fmt.Errorf("config: ALLOCATION_STRATEGY must be local or server, got %q", c.AllocationStrategy)
	}
	switch c.JournalDriver {
	case "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("config: JOURNAL_DRIVER must be postgres or memory, got %q", c.JournalDriver)
	}
	return c, nil
}

func (c Config) KafkaBrokersSlice() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) PgDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPass,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}
