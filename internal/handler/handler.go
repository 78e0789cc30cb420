package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
)

const internalErrorMessage = "Internal server error"

// respondWithJSON отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"message": message}, logger)
}

// writeError переводит ошибку usecase'а в HTTP-ответ. Клиент видит только
// сообщение domain.Error; причина и неизвестные ошибки уходят в лог.
func writeError(w http.ResponseWriter, err error, logger *slog.Logger) {
	code := statusFor(err)

	var de *domain.Error
	if code == http.StatusInternalServerError || !errors.As(err, &de) {
		logger.Error("request failed", "status", code, "error", err)
		message := internalErrorMessage
		if errors.As(err, &de) {
			message = de.Message
		}
		respondWithError(w, code, message, logger)
		return
	}

	logger.Debug("request rejected", "status", code, "error", err)
	respondWithError(w, code, de.Message, logger)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
