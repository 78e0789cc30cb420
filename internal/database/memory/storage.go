// Package memory хранит пользователей и моменты в памяти процесса.
// Используется для локального запуска (STORAGE_DRIVER=memory) и в тестах.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/google/uuid"
)

type UserStorage struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		users:   make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return fmt.Errorf("insert user %s: %w", user.Email, domain.ErrConflict)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := s.users[id]
	return &u, nil
}

// UpdateUser обновляет name, phone, photo и updated_at, как и SQL-реализации
func (s *UserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("update user %s: %w", user.ID, domain.ErrNotFound)
	}
	current.Name = user.Name
	current.Phone = user.Phone
	current.Photo = user.Photo
	current.UpdatedAt = user.UpdatedAt
	s.users[user.ID] = current
	return nil
}

// Count возвращает число пользователей.
func (s *UserStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

type MomentStorage struct {
	mu      sync.RWMutex
	moments map[uuid.UUID]domain.Moment
}

func NewMomentStorage() *MomentStorage {
	return &MomentStorage{moments: make(map[uuid.UUID]domain.Moment)}
}

func (s *MomentStorage) CreateMoment(ctx context.Context, moment *domain.Moment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if moment.ID == uuid.Nil {
		moment.ID = uuid.New()
	}
	s.moments[moment.ID] = *moment
	return nil
}

func (s *MomentStorage) GetMomentByID(ctx context.Context, id uuid.UUID) (*domain.Moment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.moments[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MomentStorage) ListMomentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Moment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	moments := make([]domain.Moment, 0)
	for _, m := range s.moments {
		if m.UserID == userID {
			moments = append(moments, m)
		}
	}
	sort.SliceStable(moments, func(i, j int) bool {
		return moments[i].CreatedAt.After(moments[j].CreatedAt)
	})
	return moments, nil
}

func (s *MomentStorage) UpdateMoment(ctx context.Context, moment *domain.Moment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.moments[moment.ID]
	if !ok {
		return fmt.Errorf("update moment %s: %w", moment.ID, domain.ErrNotFound)
	}
	current.Title = moment.Title
	current.Tags = moment.Tags
	current.Image = moment.Image
	current.UpdatedAt = moment.UpdatedAt
	s.moments[moment.ID] = current
	return nil
}

func (s *MomentStorage) DeleteMoment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.moments[id]; !ok {
		return fmt.Errorf("delete moment %s: %w", id, domain.ErrNotFound)
	}
	delete(s.moments, id)
	return nil
}

// Count возвращает число сохранённых моментов.
func (s *MomentStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.moments)
}
