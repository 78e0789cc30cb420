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

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user %s: %w", user.Email, domain.ErrConflict)
		}
		s.logger.Error("failed to insert user with GORM", "email", user.Email, "error", err)
		return fmt.Errorf("ошибка при создании пользователя с GORM: %w", err)
	}

	s.logger.Info("user saved successfully",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *GormUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormUserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *GormUserStorage) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var user domain.User
	result := s.db.WithContext(ctx).Where(cond, arg).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя с GORM: %w", result.Error)
	}
	return &user, nil
}

// UpdateUser обновляет только поля профиля
func (s *GormUserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	result := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":       user.Name,
			"phone":      user.Phone,
			"photo":      user.Photo,
			"updated_at": user.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("ошибка при обновлении пользователя с GORM: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update user %s: %w", user.ID, domain.ErrNotFound)
	}
	return nil
}
