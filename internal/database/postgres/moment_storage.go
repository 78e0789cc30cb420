package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMomentStorage реализует интерфейс ports.MomentStorage с использованием GORM
type GormMomentStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormMomentStorage(db *gorm.DB, logger *slog.Logger) *GormMomentStorage {
	return &GormMomentStorage{db: db, logger: logger}
}

// CreateMoment сохраняет момент в БД с помощью GORM
func (s *GormMomentStorage) CreateMoment(ctx context.Context, moment *domain.Moment) error {
	start := time.Now()

	if moment.ID == uuid.Nil {
		moment.ID = uuid.New()
	}

	if err := s.db.WithContext(ctx).Create(moment).Error; err != nil {
		s.logger.Error("failed to save moment with GORM", "user_id", moment.UserID, "error", err)
		return fmt.Errorf("ошибка при сохранении момента в БД с помощью GORM: %w", err)
	}

	s.logger.Info("moment saved successfully",
		"id", moment.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *GormMomentStorage) GetMomentByID(ctx context.Context, id uuid.UUID) (*domain.Moment, error) {
	var moment domain.Moment
	result := s.db.WithContext(ctx).First(&moment, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при получении момента по ID из БД с помощью GORM: %w", result.Error)
	}
	return &moment, nil
}

func (s *GormMomentStorage) ListMomentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Moment, error) {
	moments := []domain.Moment{}

	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&moments)

	if result.Error != nil {
		return nil, fmt.Errorf("ошибка при получении моментов из БД с помощью GORM: %w", result.Error)
	}
	return moments, nil
}

func (s *GormMomentStorage) UpdateMoment(ctx context.Context, moment *domain.Moment) error {
	result := s.db.WithContext(ctx).
		Model(&domain.Moment{}).
		Where("id = ?", moment.ID).
		Updates(map[string]any{
			"title":      moment.Title,
			"tags":       moment.Tags,
			"image":      moment.Image,
			"updated_at": moment.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("ошибка при обновлении момента с помощью GORM: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update moment %s: %w", moment.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *GormMomentStorage) DeleteMoment(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&domain.Moment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("ошибка при удалении момента с помощью GORM: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete moment %s: %w", id, domain.ErrNotFound)
	}
	s.logger.Info("moment deleted successfully", "id", id)
	return nil
}
