package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/usecase"
)

const cookieName = "token"

// UserHandler: обработчик HTTP-запросов регистрации, входа и профиля.
type UserHandler struct {
	authUseCase  usecase.AuthUseCase
	cookieSecure bool
	logger       *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.AuthUseCase, cookieSecure bool, logger *slog.Logger) *UserHandler {
	return &UserHandler{authUseCase: uc, cookieSecure: cookieSecure, logger: logger}
}

// authResponse: публичные поля пользователя плюс токен
type authResponse struct {
	*domain.User
	Token string `json:"token"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Photo string `json:"photo"`
}

// Register: POST /users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.authUseCase.Register(r.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.setTokenCookie(w, res.Token, res.ExpiresAt)
	respondWithJSON(w, http.StatusOK, authResponse{User: res.User, Token: res.Token}, h.logger)
}

// Login: POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.authUseCase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.setTokenCookie(w, res.Token, res.ExpiresAt)
	respondWithJSON(w, http.StatusOK, authResponse{User: res.User, Token: res.Token}, h.logger)
}

// Logout: GET /users/logout, перезаписывает cookie пустым просроченным значением
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", time.Unix(0, 0))
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Successfully Logged out"}, h.logger)
}

// GetUser: GET /users/getuser
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, notAuthorizedMessage, h.logger)
		return
	}

	user, err := h.authUseCase.GetCurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// LoginStatus: GET /users/loggedin, всегда 200 с true или false
func (h *UserHandler) LoginStatus(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(cookieName); err == nil {
		token = c.Value
	}
	respondWithJSON(w, http.StatusOK, h.authUseCase.LoginStatus(token), h.logger)
}

// UpdateUser: PATCH /users/updateuser
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, notAuthorizedMessage, h.logger)
		return
	}

	var req updateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.authUseCase.UpdateProfile(r.Context(), userID, usecase.UpdateProfileInput{
		Name:  req.Name,
		Phone: req.Phone,
		Photo: req.Photo,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, user, h.logger)
}

func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	// пустое тело равносильно пустому объекту: поля проверит usecase
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return false
	}
	return true
}

func (h *UserHandler) setTokenCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
}
