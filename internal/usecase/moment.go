package usecase

import (
	"context"
	"io"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/google/uuid"
)

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO)
type FileStorage interface {
	// UploadFile загружает файл и возвращает его постоянный URL.
	// `key` - уникальное имя объекта в хранилище (папка + UUID).
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)

	// DeleteFile удаляет файл из хранилища по его ключу
	DeleteFile(ctx context.Context, key string) error
}

// ImageUpload: файл из multipart-запроса
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type CreateMomentInput struct {
	Title string
	Tags  string
	Image *ImageUpload
}

// UpdateMomentInput: nil в Title/Tags означает «не менять»,
// nil в Image оставляет текущее изображение как есть
type UpdateMomentInput struct {
	Title *string
	Tags  *string
	Image *ImageUpload
}

// MomentUseCase определяет интерфейс бизнес-логики работы с моментами
type MomentUseCase interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateMomentInput) (*domain.Moment, error)

	// List возвращает все моменты пользователя, новые первыми, без пагинации
	List(ctx context.Context, userID uuid.UUID) ([]domain.Moment, error)

	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Moment, error)
	Update(ctx context.Context, userID, id uuid.UUID, in UpdateMomentInput) (*domain.Moment, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
