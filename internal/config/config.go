package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StorageDriverSQLX   = "sqlx"
	StorageDriverGorm   = "gorm"
	StorageDriverMemory = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	ServerPort     string        `env:"SERVER_PORT"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	StorageDriver  string        `env:"STORAGE_DRIVER" envDefault:"sqlx"`

	// Сессии
	JWTSecret          string        `env:"JWT_SECRET,required"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	CookieSecure       bool          `env:"COOKIE_SECURE" envDefault:"true"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`
	MinioPublicURL       string `env:"MINIO_PUBLIC_URL"`

	// Загрузка изображений
	UploadFolder      string `env:"UPLOAD_FOLDER" envDefault:"moments-app"`
	MaxUploadSize     int64  `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	UploadConcurrency int    `env:"UPLOAD_CONCURRENCY" envDefault:"5"`

	// Очередь очистки осиротевших изображений. Без URL задачи только логируются.
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"image_cleanup_queue"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, которые env не может проверить тегами.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StorageDriverSQLX, StorageDriverGorm, StorageDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q (use %q, %q or %q)",
			c.StorageDriver, StorageDriverSQLX, StorageDriverGorm, StorageDriverMemory))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE must be positive"))
	}
	if c.UploadConcurrency <= 0 {
		errs = append(errs, errors.New("UPLOAD_CONCURRENCY must be positive"))
	}
	if c.UploadFolder == "" {
		errs = append(errs, errors.New("UPLOAD_FOLDER must not be empty"))
	}

	return errors.Join(errs...)
}
