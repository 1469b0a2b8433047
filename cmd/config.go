package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is read from the environment, after an optional .env file. Unset
// optional integrations (REDIS_ADDR, KAFKA_BROKERS) turn the matching
// feature off rather than failing.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"orders"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	StorageTimeout    time.Duration `env:"STORAGE_TIMEOUT" envDefault:"5s"`
	StorageMaxRetries uint64        `env:"STORAGE_MAX_RETRIES" envDefault:"3"`

	RedisAddr        string        `env:"REDIS_ADDR"`
	TimelineCacheTTL time.Duration `env:"TIMELINE_CACHE_TTL" envDefault:"5m"`

	KafkaBrokers          []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaOrderStatusTopic string   `env:"KAFKA_ORDER_STATUS_TOPIC" envDefault:"order.status_changed"`

	OutboxBatchSize int    `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	OutboxSchedule  string `env:"OUTBOX_SCHEDULE" envDefault:"*/2 * * * * *"`

	AuthorizationEnabled bool          `env:"AUTHORIZATION_ENABLED" envDefault:"true"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// LoadConfig reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.StorageTimeout <= 0 {
		return Config{}, fmt.Errorf("STORAGE_TIMEOUT must be positive, got %s", cfg.StorageTimeout)
	}
	return cfg, nil
}

// DSN is the PostgreSQL connection string in URL form.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSslMode}}.Encode(),
	}
	return u.String()
}
