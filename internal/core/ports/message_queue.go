package ports

import (
	"context"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/messaging/payloads"
)

// ImageCleanupPublisher публикует задачи на удаление осиротевших изображений.
// Используется usecase'ом моментов.
type ImageCleanupPublisher interface {
	PublishImageCleanup(ctx context.Context, payload payloads.ImageCleanupPayload) error
}

// ImageCleanupConsumer потребляет задачи очистки, используется воркером.
type ImageCleanupConsumer interface {
	// StartConsumingImageCleanup начинает прослушивание очереди и вызывает handler
	// для каждого полученного сообщения
	StartConsumingImageCleanup(ctx context.Context, handler func(context.Context, payloads.ImageCleanupPayload) error) error
}
