package usecase

import (
	"context"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/google/uuid"
)

// TokenIssuer определяет интерфейс выпуска и проверки сессионных токенов (JWT)
type TokenIssuer interface {
	// Generate выпускает токен и возвращает время его истечения
	Generate(userID uuid.UUID) (string, time.Time, error)
	// Verify проверяет подпись и срок действия токена
	Verify(token string) (uuid.UUID, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfileInput: пустые поля сохраняют текущее значение
type UpdateProfileInput struct {
	Name  string
	Phone string
	Photo string
}

// AuthResult возвращается после успешной регистрации или входа.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthUseCase определяет интерфейс бизнес-логики аутентификации и профиля
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*domain.User, error)

	// LoginStatus никогда не возвращает ошибку: невалидный токен означает false
	LoginStatus(token string) bool

	// Authenticate проверяет токен защищённого маршрута
	Authenticate(token string) (uuid.UUID, error)
}
