package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const momentColumns = `id, user_id, title, tags, image, created_at, updated_at`

// MomentStorage реализует интерфейс ports.MomentStorage поверх sqlx.
// Изображение хранится в колонке jsonb через domain.Image (Valuer/Scanner).
type MomentStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewMomentStorage(db *sqlx.DB, logger *slog.Logger) *MomentStorage {
	return &MomentStorage{db: db, logger: logger}
}

// CreateMoment сохраняет момент в бд
func (s *MomentStorage) CreateMoment(ctx context.Context, moment *domain.Moment) error {
	start := time.Now()

	if moment.ID == uuid.Nil {
		moment.ID = uuid.New()
	}

	query := `
	INSERT INTO moments (` + momentColumns + `)
	VALUES (:id, :user_id, :title, :tags, :image, :created_at, :updated_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, moment); err != nil {
		s.logger.Error("failed to save moment", "user_id", moment.UserID, "error", err)
		return fmt.Errorf("ошибка при сохранении момента: %w", err)
	}

	s.logger.Info("moment saved successfully",
		"id", moment.ID,
		"user_id", moment.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetMomentByID получает момент по ID; (nil, nil), если его нет
func (s *MomentStorage) GetMomentByID(ctx context.Context, id uuid.UUID) (*domain.Moment, error) {
	start := time.Now()

	var moment domain.Moment
	err := s.db.GetContext(ctx, &moment, `SELECT `+momentColumns+` FROM moments WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("moment not found by id", "id", id)
			return nil, nil
		}
		s.logger.Error("failed to get moment by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении момента по ID: %w", err)
	}

	s.logger.Debug("moment retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &moment, nil
}

// ListMomentsByUser возвращает моменты пользователя, новые первыми
func (s *MomentStorage) ListMomentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Moment, error) {
	start := time.Now()

	moments := []domain.Moment{}
	query := `SELECT ` + momentColumns + ` FROM moments WHERE user_id = $1 ORDER BY created_at DESC`

	if err := s.db.SelectContext(ctx, &moments, query, userID); err != nil {
		s.logger.Error("failed to list moments", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка моментов: %w", err)
	}

	s.logger.Debug("moments listed",
		"user_id", userID,
		"count", len(moments),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return moments, nil
}

func (s *MomentStorage) UpdateMoment(ctx context.Context, moment *domain.Moment) error {
	start := time.Now()

	res, err := s.db.NamedExecContext(ctx, `
	UPDATE moments SET title = :title, tags = :tags, image = :image, updated_at = :updated_at
	WHERE id = :id
	`, moment)
	if err != nil {
		s.logger.Error("failed to update moment", "id", moment.ID, "error", err)
		return fmt.Errorf("ошибка при обновлении момента: %w", err)
	}
	if err := ensureAffected(res); err != nil {
		return fmt.Errorf("update moment %s: %w", moment.ID, err)
	}

	s.logger.Info("moment updated successfully",
		"id", moment.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *MomentStorage) DeleteMoment(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `DELETE FROM moments WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete moment", "id", id, "error", err)
		return fmt.Errorf("ошибка при удалении момента: %w", err)
	}
	if err := ensureAffected(res); err != nil {
		return fmt.Errorf("delete moment %s: %w", id, err)
	}

	s.logger.Info("moment deleted successfully",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
