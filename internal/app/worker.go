package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/core/ports"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/messaging/payloads"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/usecase"
)

// runWorker потребляет задачи очистки и удаляет осиротевшие объекты
func runWorker(
	ctx context.Context,
	consumer ports.ImageCleanupConsumer,
	files usecase.FileStorage,
	logger *slog.Logger,
) error {
	if err := consumer.StartConsumingImageCleanup(ctx, cleanupHandler(files, logger)); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	logger.Info("worker started, waiting for cleanup tasks")
	<-ctx.Done()
	logger.Info("worker stopped")
	return nil
}

func cleanupHandler(files usecase.FileStorage, logger *slog.Logger) func(context.Context, payloads.ImageCleanupPayload) error {
	return func(ctx context.Context, payload payloads.ImageCleanupPayload) error {
		if err := files.DeleteFile(ctx, payload.ObjectKey); err != nil {
			return fmt.Errorf("delete orphaned object %s: %w", payload.ObjectKey, err)
		}
		logger.Debug("orphaned object removed", "object_key", payload.ObjectKey, "reason", payload.Reason)
		return nil
	}
}
