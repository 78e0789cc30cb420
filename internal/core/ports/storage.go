package ports

import (
	"context"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/google/uuid"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Get-методы возвращают (nil, nil), если запись не найдена.
type UserStorage interface {
	// CreateUser сохраняет нового пользователя; дубликат email даёт domain.ErrConflict
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// MomentStorage определяет методы для взаимодействия с хранилищем моментов
type MomentStorage interface {
	CreateMoment(ctx context.Context, moment *domain.Moment) error
	GetMomentByID(ctx context.Context, id uuid.UUID) (*domain.Moment, error)
	// ListMomentsByUser возвращает все моменты пользователя, новые первыми
	ListMomentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Moment, error)
	// UpdateMoment перезаписывает title, tags, image; отсутствие записи даёт domain.ErrNotFound
	UpdateMoment(ctx context.Context, moment *domain.Moment) error
	DeleteMoment(ctx context.Context, id uuid.UUID) error
}
