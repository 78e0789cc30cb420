package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/auth"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/core/ports"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/google/uuid"
)

// authUseCase implements AuthUseCase
type authUseCase struct {
	userStorage ports.UserStorage
	tokens      TokenIssuer
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthUseCase создает новый экземпляр AuthUseCase
func NewAuthUseCase(userStorage ports.UserStorage, tokens TokenIssuer, logger *slog.Logger) AuthUseCase {
	return &authUseCase{
		userStorage: userStorage,
		tokens:      tokens,
		logger:      logger,
		now:         time.Now,
	}
}

// Register создаёт пользователя с bcrypt-хешем пароля и сразу выпускает токен
func (uc *authUseCase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.NewValidationError("Please fill in all required fields")
	}
	if utf8.RuneCountInString(in.Password) < domain.MinPasswordLength {
		return nil, domain.NewValidationError("Password must be up to 6 characters")
	}

	existing, err := uc.userStorage.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("usecase: check email: %w", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("Email has already been registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, domain.NewValidationError("Password must not be longer than 72 bytes")
		}
		return nil, fmt.Errorf("usecase: hash password: %w", err)
	}

	now := uc.now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Photo:        domain.DefaultUserPhoto,
		Phone:        domain.DefaultUserPhone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewConflictError("Email has already been registered")
		}
		return nil, fmt.Errorf("usecase: create user: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID)
	return uc.issue(user)
}

// Login проверяет учётные данные строго по порядку: сначала пользователь, потом пароль
func (uc *authUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("Please add Email and Password")
	}

	user, err := uc.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("usecase: find user by email: %w", err)
	}
	// неизвестный email отвечает 400, как и неверный пароль
	if user == nil {
		return nil, domain.NewInvalidCredentialsError("User not found, Please sign-up")
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		uc.logger.Warn("login rejected: password mismatch", "user_id", user.ID)
		return nil, domain.NewInvalidCredentialsError("Invalid Email or password")
	}

	uc.logger.Info("user logged in", "user_id", user.ID)
	return uc.issue(user)
}

// GetCurrentUser получает пользователя по id из проверенного токена.
// Токен на удалённого пользователя отвечает 400, а не 404.
func (uc *authUseCase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: get user %s: %w", userID, err)
	}
	if user == nil {
		return nil, domain.NewInvalidCredentialsError("User Not Found")
	}
	return user, nil
}

// UpdateProfile меняет только name, phone и photo
func (uc *authUseCase) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: get user %s: %w", userID, err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	user.ApplyProfile(in.Name, in.Phone, in.Photo)
	user.UpdatedAt = uc.now().UTC()

	if err := uc.userStorage.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("usecase: update user %s: %w", userID, err)
	}

	uc.logger.Info("user profile updated", "user_id", user.ID)
	return user, nil
}

func (uc *authUseCase) LoginStatus(token string) bool {
	if token == "" {
		return false
	}
	_, err := uc.tokens.Verify(token)
	return err == nil
}

func (uc *authUseCase) Authenticate(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domain.NewNotAuthorizedError("Not authorized, please login")
	}
	userID, err := uc.tokens.Verify(token)
	if err != nil {
		return uuid.Nil, &domain.Error{Kind: domain.ErrNotAuthorized, Message: "Not authorized, please login", Cause: err}
	}
	return userID, nil
}

func (uc *authUseCase) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := uc.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
