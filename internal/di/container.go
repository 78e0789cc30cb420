package di

import (
	"context"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/adapter/storage/minio"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/app"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/auth"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/config"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/core/ports"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/database/client"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/database/memory"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/database/postgres"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/database/storage"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/handler"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/logger"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/rabbitmq"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
// При ошибке уже открытые ресурсы закрываются.
func BuildApp(ctx context.Context) (_ *app.App, err error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	healthChecks := map[string]handler.Pinger{}

	// 2. Хранилища по STORAGE_DRIVER
	var (
		userStorage   ports.UserStorage
		momentStorage ports.MomentStorage
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		slogger.Warn("using in-memory storage, data is lost on restart")
		userStorage = memory.NewUserStorage()
		momentStorage = memory.NewMomentStorage()

	default:
		dbClient, err := client.NewClient(cfg, slogger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, dbClient.Close)
		healthChecks["database"] = dbClient

		if cfg.StorageDriver == config.StorageDriverGorm {
			gormDB, err := postgres.NewGormDB(dbClient.DB.DB, slogger)
			if err != nil {
				return nil, err
			}
			userStorage = postgres.NewGormUserStorage(gormDB, slogger)
			momentStorage = postgres.NewGormMomentStorage(gormDB, slogger)
		} else {
			userStorage = storage.NewUserStorage(dbClient.DB, slogger)
			momentStorage = storage.NewMomentStorage(dbClient.DB, slogger)
		}
	}
	slogger.Info("storage initialized", "driver", cfg.StorageDriver)

	// 3. S3 / MinIO адаптер
	fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
	if err != nil {
		return nil, err
	}
	healthChecks["object_storage"] = fileStorage

	// 4. RabbitMQ: без URL очистка изображений только логируется
	var (
		cleanupPublisher ports.ImageCleanupPublisher
		cleanupConsumer  ports.ImageCleanupConsumer
	)
	if cfg.RabbitMQ.RabbitMQURL != "" {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() error {
			rabbitMQClient.Close()
			return nil
		})
		cleanupPublisher = rabbitMQClient
		cleanupConsumer = rabbitMQClient
	} else {
		slogger.Warn("RABBITMQ_URL is not set, orphaned images will only be logged")
	}

	// 5. Бизнес-логика
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authUseCase := usecase.NewAuthUseCase(userStorage, tokens, slogger)
	momentUseCase := usecase.NewMomentUseCase(momentStorage, fileStorage, cleanupPublisher, cfg.UploadFolder, slogger)

	// 6. HTTP
	router := app.NewRouter(app.RouterDeps{
		Config:        cfg,
		Logger:        slogger,
		AuthUseCase:   authUseCase,
		MomentUseCase: momentUseCase,
		UploadLimiter: make(chan struct{}, cfg.UploadConcurrency),
		HealthChecks:  healthChecks,
	})

	slogger.Info("all dependencies initialized")
	return app.NewApp(cfg, slogger, router, cleanupConsumer, fileStorage, closers...), nil
}
