package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", domain.NewValidationError("Please fill all"), http.StatusBadRequest, "Please fill all"},
		{"conflict", domain.NewConflictError("Email has already been registered"), http.StatusBadRequest, "Email has already been registered"},
		{"credentials", domain.NewInvalidCredentialsError("Invalid Email or password"), http.StatusBadRequest, "Invalid Email or password"},
		{"not authorized", domain.NewNotAuthorizedError("User not authorized"), http.StatusUnauthorized, "User not authorized"},
		{"not found", domain.NewNotFoundError("Moment not found"), http.StatusNotFound, "Moment not found"},
		{"wrapped not found", fmt.Errorf("usecase: %w", domain.NewNotFoundError("User not found")), http.StatusNotFound, "User not found"},
		{"upload", domain.NewUploadError("Image not uploaded", errors.New("s3: access denied")), http.StatusInternalServerError, "Image not uploaded"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err, logger.Nop())

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{"message": tt.wantMessage}, body)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, tokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", tokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: cookieName, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", tokenFromRequest(req), "cookie wins over header")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, tokenFromRequest(req))
}

func TestContentTypeOf(t *testing.T) {
	assert.Equal(t, "image/png", contentTypeOf("image/png", "a.bin"))
	assert.Equal(t, "image/jpeg", contentTypeOf("application/octet-stream", "photo.JPG"))
	assert.Equal(t, "image/png", contentTypeOf("", "photo.png"))
	assert.Equal(t, "application/octet-stream", contentTypeOf("", "noext"))
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	called := false
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/moments", nil))

	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_KeepsFlusher(t *testing.T) {
	var flushable bool
	h := RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, flushable = w.(http.Flusher)
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.True(t, flushable)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
