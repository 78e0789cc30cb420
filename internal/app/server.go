package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/config"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/handler"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 30 * time.Second

// RouterDeps: всё, что нужно HTTP-слою
type RouterDeps struct {
	Config        *config.Config
	Logger        *slog.Logger
	AuthUseCase   usecase.AuthUseCase
	MomentUseCase usecase.MomentUseCase
	UploadLimiter chan struct{}
	HealthChecks  map[string]handler.Pinger
}

// NewRouter регистрирует маршруты /users, /moments и /healthz
func NewRouter(d RouterDeps) http.Handler {
	userHandler := handler.NewUserHandler(d.AuthUseCase, d.Config.CookieSecure, d.Logger)
	momentHandler := handler.NewMomentHandler(d.MomentUseCase, d.UploadLimiter, d.Config.MaxUploadSize, d.Logger)
	requireAuth := handler.RequireAuth(d.AuthUseCase, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(handler.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(handler.CORS(d.Config.CORSAllowedOrigins))
	r.Use(middleware.Timeout(d.Config.RequestTimeout))

	r.Get("/healthz", handler.Health(d.Logger, d.HealthChecks))

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Get("/loggedin", userHandler.LoginStatus)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/logout", userHandler.Logout)
			r.Get("/getuser", userHandler.GetUser)
			r.Patch("/updateuser", userHandler.UpdateUser)
		})
	})

	r.Route("/moments", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", momentHandler.CreateMoment)
		r.Get("/", momentHandler.GetMoments)
		r.Get("/{id}", momentHandler.GetMoment)
		r.Patch("/{id}", momentHandler.UpdateMoment)
		r.Delete("/{id}", momentHandler.DeleteMoment)
	})

	return r
}

// runServer запускает HTTP сервер и останавливает его по отмене ctx
func runServer(ctx context.Context, cfg *config.Config, router http.Handler, logger *slog.Logger) error {
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка при запуске сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping http server")

	ctxServer, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("http server stopped")
	return nil
}
