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

const userColumns = `id, name, email, password_hash, photo, phone, created_at, updated_at`

// UserStorage реализует интерфейс ports.UserStorage поверх sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser сохраняет пользователя. Нарушение уникального индекса по email
// превращается в domain.ErrConflict.
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
	INSERT INTO users (` + userColumns + `)
	VALUES (:id, :name, :email, :password_hash, :photo, :phone, :created_at, :updated_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("user email already exists", "email", user.Email)
			return fmt.Errorf("insert user %s: %w", user.Email, domain.ErrConflict)
		}
		s.logger.Error("failed to insert user", "email", user.Email, "error", err)
		return fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user saved successfully",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id)
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

func (s *UserStorage) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("user not found", "key", arg)
			return nil, nil
		}
		s.logger.Error("failed to select user", "key", arg, "error", err)
		return nil, fmt.Errorf("select user: %w", err)
	}

	s.logger.Debug("user retrieved",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// UpdateUser обновляет только профиль: email и пароль здесь не меняются
func (s *UserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = $1, phone = $2, photo = $3, updated_at = $4 WHERE id = $5`,
		user.Name, user.Phone, user.Photo, user.UpdatedAt, user.ID,
	)
	if err != nil {
		s.logger.Error("failed to update user", "user_id", user.ID, "error", err)
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	if err := ensureAffected(res); err != nil {
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}

	s.logger.Info("user updated successfully",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// ensureAffected превращает UPDATE/DELETE без затронутых строк в domain.ErrNotFound
func ensureAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
