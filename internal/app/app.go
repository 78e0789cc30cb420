package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/config"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/core/ports"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/usecase"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

type App struct {
	Config          *config.Config
	logger          *slog.Logger
	router          http.Handler
	cleanupConsumer ports.ImageCleanupConsumer
	fileStorage     usecase.FileStorage
	closers         []func() error
}

// NewApp собирает приложение. cleanupConsumer может быть nil, тогда
// режим worker недоступен. closers вызываются при Shutdown в обратном порядке.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	router http.Handler,
	cleanupConsumer ports.ImageCleanupConsumer,
	fileStorage usecase.FileStorage,
	closers ...func() error,
) *App {
	return &App{
		Config:          cfg,
		logger:          logger,
		router:          router,
		cleanupConsumer: cleanupConsumer,
		fileStorage:     fileStorage,
		closers:         closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется до SIGINT/SIGTERM
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting application", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = runServer(ctx, a.Config, a.router, a.logger)
	case ModeWorker:
		if a.cleanupConsumer == nil {
			err = errors.New("режим worker требует RABBITMQ_URL")
			break
		}
		err = runWorker(ctx, a.cleanupConsumer, a.fileStorage, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with errors", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
