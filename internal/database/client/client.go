package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/config"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/database/migrations"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Client представляет клиент для взаимодействия с PostgreSQL.
// Одно соединение обслуживает и sqlx-хранилища, и GORM, и миграции.
type Client struct {
	DB     *sqlx.DB
	logger *slog.Logger
}

// NewClient открывает соединение с PostgreSQL и применяет миграции
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open PostgreSQL connection", "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения с БД: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("PostgreSQL connection established successfully",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	c := &Client{DB: db, logger: logger}
	if err := c.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Migrate применяет встроенные миграции. ErrNoChange ошибкой не считается.
func (c *Client) Migrate() error {
	start := time.Now()

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("не удалось открыть источник миграций: %w", err)
	}

	driver, err := migratepg.WithInstance(c.DB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("не удалось создать драйвер миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		c.logger.Info("no migrations to apply, database is up to date")
	case err != nil:
		c.logger.Error("failed to apply migrations", "error", err)
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	default:
		c.logger.Info("migrations applied successfully", "duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}

// Ping используется проверкой готовности
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
