package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Moment представляет запись личного дневника пользователя,
// соответствует таблице moments в бд
type Moment struct {
	ID        uuid.UUID `json:"_id" db:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user" db:"user_id" gorm:"type:uuid;index"`
	Title     string    `json:"title" db:"title"`
	Tags      string    `json:"tags" db:"tags"`
	Image     Image     `json:"image" db:"image" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (Moment) TableName() string {
	return "moments"
}

// OwnedBy: единственная проверка владельца, используется перед любым
// чтением, изменением или удалением записи.
func (m *Moment) OwnedBy(userID uuid.UUID) bool {
	return m != nil && m.UserID != uuid.Nil && m.UserID == userID
}

// Image: вложенная запись о загруженном изображении.
// ObjectKey нужен только серверу и в ответы API не попадает.
type Image struct {
	FileName  string `json:"fileName,omitempty"`
	FilePath  string `json:"filePath,omitempty"`
	FileType  string `json:"fileType,omitempty"`
	FileSize  string `json:"fileSize,omitempty"`
	ObjectKey string `json:"-"`
}

// imageRecord: то же изображение в колонке jsonb, вместе с ключом объекта.
type imageRecord struct {
	FileName  string `json:"fileName,omitempty"`
	FilePath  string `json:"filePath,omitempty"`
	FileType  string `json:"fileType,omitempty"`
	FileSize  string `json:"fileSize,omitempty"`
	ObjectKey string `json:"objectKey,omitempty"`
}

// IsEmpty сообщает, что к записи не прикреплено изображение.
func (i Image) IsEmpty() bool {
	return i == Image{}
}

// Value реализует driver.Valuer для записи в jsonb.
// Строка, а не []byte: lib/pq кодирует []byte как bytea.
func (i Image) Value() (driver.Value, error) {
	b, err := json.Marshal(imageRecord(i))
	if err != nil {
		return nil, fmt.Errorf("marshal image: %w", err)
	}
	return string(b), nil
}

// Scan реализует sql.Scanner для чтения из jsonb.
func (i *Image) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*i = Image{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan image: unsupported type %T", src)
	}

	var rec imageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("scan image: %w", err)
	}
	*i = Image(rec)
	return nil
}
