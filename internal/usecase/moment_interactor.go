package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/core/ports"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/messaging/payloads"
	"github.com/google/uuid"
)

const maxExtLength = 8

// momentUseCase implements MomentUseCase
type momentUseCase struct {
	momentStorage ports.MomentStorage
	fileStorage   FileStorage
	cleanup       ports.ImageCleanupPublisher
	uploadFolder  string
	logger        *slog.Logger
	now           func() time.Time
}

// NewMomentUseCase создает новый экземпляр MomentUseCase.
// cleanup может быть nil: тогда осиротевшие объекты только логируются.
func NewMomentUseCase(
	momentStorage ports.MomentStorage,
	fileStorage FileStorage,
	cleanup ports.ImageCleanupPublisher,
	uploadFolder string,
	logger *slog.Logger,
) MomentUseCase {
	return &momentUseCase{
		momentStorage: momentStorage,
		fileStorage:   fileStorage,
		cleanup:       cleanup,
		uploadFolder:  uploadFolder,
		logger:        logger,
		now:           time.Now,
	}
}

// Create проверяет поля, при наличии файла загружает его и сохраняет момент
func (uc *momentUseCase) Create(ctx context.Context, userID uuid.UUID, in CreateMomentInput) (*domain.Moment, error) {
	if in.Title == "" || in.Tags == "" {
		return nil, domain.NewValidationError("Please fill all")
	}

	var image domain.Image
	if in.Image != nil {
		var err error
		if image, err = uc.attachImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	now := uc.now().UTC()
	moment := &domain.Moment{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     in.Title,
		Tags:      in.Tags,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.momentStorage.CreateMoment(ctx, moment); err != nil {
		uc.scheduleCleanup(ctx, image.ObjectKey, payloads.CleanupReasonWriteFailed)
		return nil, fmt.Errorf("usecase: create moment: %w", err)
	}

	uc.logger.Info("moment created", "moment_id", moment.ID, "user_id", userID, "with_image", !image.IsEmpty())
	return moment, nil
}

func (uc *momentUseCase) List(ctx context.Context, userID uuid.UUID) ([]domain.Moment, error) {
	moments, err := uc.momentStorage.ListMomentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: list moments of user %s: %w", userID, err)
	}
	if moments == nil {
		moments = []domain.Moment{}
	}
	return moments, nil
}

func (uc *momentUseCase) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Moment, error) {
	return uc.authorize(ctx, userID, id)
}

// Update меняет только переданные поля; без нового файла изображение не трогается
func (uc *momentUseCase) Update(ctx context.Context, userID, id uuid.UUID, in UpdateMomentInput) (*domain.Moment, error) {
	moment, err := uc.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		moment.Title = *in.Title
	}
	if in.Tags != nil {
		moment.Tags = *in.Tags
	}
	if moment.Title == "" || moment.Tags == "" {
		return nil, domain.NewValidationError("Please fill all")
	}

	previous := moment.Image
	if in.Image != nil {
		image, err := uc.attachImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		moment.Image = image
	}
	moment.UpdatedAt = uc.now().UTC()

	if err := uc.momentStorage.UpdateMoment(ctx, moment); err != nil {
		if in.Image != nil {
			uc.scheduleCleanup(ctx, moment.Image.ObjectKey, payloads.CleanupReasonWriteFailed)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Moment not found")
		}
		return nil, fmt.Errorf("usecase: update moment %s: %w", id, err)
	}

	if in.Image != nil {
		uc.scheduleCleanup(ctx, previous.ObjectKey, payloads.CleanupReasonReplaced)
	}

	uc.logger.Info("moment updated", "moment_id", moment.ID, "user_id", userID)
	return moment, nil
}

func (uc *momentUseCase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	moment, err := uc.authorize(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := uc.momentStorage.DeleteMoment(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewNotFoundError("Moment not found")
		}
		return fmt.Errorf("usecase: delete moment %s: %w", id, err)
	}

	uc.scheduleCleanup(ctx, moment.Image.ObjectKey, payloads.CleanupReasonDeleted)
	uc.logger.Info("moment deleted", "moment_id", id, "user_id", userID)
	return nil
}

// authorize загружает момент и проверяет, что он принадлежит userID.
// Вызывается перед любым чтением, изменением или удалением.
func (uc *momentUseCase) authorize(ctx context.Context, userID, id uuid.UUID) (*domain.Moment, error) {
	moment, err := uc.momentStorage.GetMomentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: get moment %s: %w", id, err)
	}
	if moment == nil {
		return nil, domain.NewNotFoundError("Moment not found")
	}
	if !moment.OwnedBy(userID) {
		uc.logger.Warn("moment access denied", "moment_id", id, "user_id", userID)
		return nil, domain.NewNotAuthorizedError("User not authorized")
	}
	return moment, nil
}

// attachImage загружает файл в хранилище и собирает вложенную запись об изображении
func (uc *momentUseCase) attachImage(ctx context.Context, upload *ImageUpload) (domain.Image, error) {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return domain.Image{}, domain.NewUploadError("Image not uploaded",
			fmt.Errorf("unsupported content type %q", upload.ContentType))
	}

	ext := strings.ToLower(path.Ext(upload.FileName))
	if len(ext) > maxExtLength {
		ext = ""
	}
	key := path.Join(uc.uploadFolder, uuid.NewString()+ext)

	start := time.Now()
	url, err := uc.fileStorage.UploadFile(ctx, key, upload.Content, upload.ContentType)
	if err != nil {
		uc.logger.Error("image upload failed", "object_key", key, "error", err)
		return domain.Image{}, domain.NewUploadError("Image not uploaded", err)
	}

	uc.logger.Info("image uploaded",
		"object_key", key,
		"size", upload.Size,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return domain.Image{
		FileName:  upload.FileName,
		FilePath:  url,
		FileType:  upload.ContentType,
		FileSize:  domain.FormatFileSize(upload.Size, 2),
		ObjectKey: key,
	}, nil
}

// scheduleCleanup ставит объект в очередь на удаление. Ошибка публикации
// только логируется и не влияет на ответ клиенту.
func (uc *momentUseCase) scheduleCleanup(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	if uc.cleanup == nil {
		uc.logger.Warn("image cleanup not configured, object left in storage", "object_key", key, "reason", reason)
		return
	}

	payload := payloads.ImageCleanupPayload{ObjectKey: key, Reason: reason}
	if err := uc.cleanup.PublishImageCleanup(context.WithoutCancel(ctx), payload); err != nil {
		uc.logger.Warn("failed to schedule image cleanup", "object_key", key, "reason", reason, "error", err)
	}
}
