// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultUserPhoto = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultUserPhone = "+234"

	MinPasswordLength = 6
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID `json:"_id" db:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Photo        string    `json:"photo" db:"photo"`
	Phone        string    `json:"phone" db:"phone"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ApplyProfile переносит непустые поля профиля на пользователя.
// Email здесь не меняется никогда.
func (u *User) ApplyProfile(name, phone, photo string) {
	if name != "" {
		u.Name = name
	}
	if phone != "" {
		u.Phone = phone
	}
	if photo != "" {
		u.Photo = photo
	}
}
