package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	imageField = "image"
	// запас на текстовые поля и границы multipart поверх самого файла
	multipartOverhead = 1 << 20
)

// MomentHandler: обработчик HTTP-запросов для работы с моментами.
type MomentHandler struct {
	momentUseCase usecase.MomentUseCase
	uploadLimiter chan struct{}
	maxUploadSize int64
	logger        *slog.Logger
}

// NewMomentHandler создаёт новый экземпляр MomentHandler.
// limiter ограничивает число одновременных загрузок файлов.
func NewMomentHandler(
	uc usecase.MomentUseCase,
	limiter chan struct{},
	maxUploadSize int64,
	logger *slog.Logger,
) *MomentHandler {
	return &MomentHandler{
		momentUseCase: uc,
		uploadLimiter: limiter,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// momentForm: разобранное тело запроса создания или изменения.
// nil в Title/Tags означает, что поле не передавалось.
type momentForm struct {
	Title *string             `json:"title"`
	Tags  *string             `json:"tags"`
	Image *usecase.ImageUpload `json:"-"`
}

// CreateMoment: POST /moments
func (h *MomentHandler) CreateMoment(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, notAuthorizedMessage, h.logger)
		return
	}

	form, cleanup, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer cleanup()

	in := usecase.CreateMomentInput{Image: form.Image}
	if form.Title != nil {
		in.Title = *form.Title
	}
	if form.Tags != nil {
		in.Tags = *form.Tags
	}

	moment, err := h.momentUseCase.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, moment, h.logger)
}

// GetMoments: GET /moments
func (h *MomentHandler) GetMoments(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, notAuthorizedMessage, h.logger)
		return
	}

	moments, err := h.momentUseCase.List(r.Context(), userID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Debug("moments fetched", "user_id", userID, "count", len(moments))
	respondWithJSON(w, http.StatusOK, moments, h.logger)
}

// GetMoment: GET /moments/{id}
func (h *MomentHandler) GetMoment(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.identify(w, r)
	if !ok {
		return
	}

	moment, err := h.momentUseCase.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, moment, h.logger)
}

// UpdateMoment: PATCH /moments/{id}
func (h *MomentHandler) UpdateMoment(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.identify(w, r)
	if !ok {
		return
	}

	form, cleanup, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer cleanup()

	moment, err := h.momentUseCase.Update(r.Context(), userID, id, usecase.UpdateMomentInput{
		Title: form.Title,
		Tags:  form.Tags,
		Image: form.Image,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, moment, h.logger)
}

// DeleteMoment: DELETE /moments/{id}
func (h *MomentHandler) DeleteMoment(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.momentUseCase.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Moment deleted."}, h.logger)
}

// identify достает пользователя из контекста и id момента из пути.
// Некорректный id отвечает 404, как и несуществующий.
func (h *MomentHandler) identify(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, notAuthorizedMessage, h.logger)
		return uuid.Nil, uuid.Nil, false
	}

	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Debug("invalid moment id", "id", raw, "error", err)
		respondWithError(w, http.StatusNotFound, "Moment not found", h.logger)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

// parseForm принимает multipart/form-data (поле image опционально) или JSON.
// Возвращает функцию освобождения слота загрузки и временных файлов.
func (h *MomentHandler) parseForm(w http.ResponseWriter, r *http.Request) (*momentForm, func(), bool) {
	noop := func() {}
	form := &momentForm{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(form); err != nil && !errors.Is(err, io.EOF) {
			h.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
			respondWithError(w, http.StatusBadRequest, "Invalid request body", h.logger)
			return nil, noop, false
		}
		return form, noop, true
	}

	// Ограничиваем число одновременных загрузок
	select {
	case h.uploadLimiter <- struct{}{}:
	case <-r.Context().Done():
		h.logger.Warn("upload slot wait cancelled", "error", r.Context().Err())
		respondWithError(w, http.StatusServiceUnavailable, "Server is busy, try again later", h.logger)
		return nil, noop, false
	}
	release := func() { <-h.uploadLimiter }

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		release()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Image too large", h.logger)
			return nil, noop, false
		}
		h.logger.Warn("invalid multipart form", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid form data", h.logger)
		return nil, noop, false
	}

	done := func() {
		_ = r.MultipartForm.RemoveAll()
		release()
	}

	if v, ok := r.MultipartForm.Value["title"]; ok && len(v) > 0 {
		form.Title = &v[0]
	}
	if v, ok := r.MultipartForm.Value["tags"]; ok && len(v) > 0 {
		form.Tags = &v[0]
	}

	file, header, err := r.FormFile(imageField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, done, true
	case err != nil:
		done()
		h.logger.Warn("failed to read uploaded file", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid form data", h.logger)
		return nil, noop, false
	}

	if header.Size > h.maxUploadSize {
		_ = file.Close()
		done()
		respondWithError(w, http.StatusRequestEntityTooLarge, "Image too large", h.logger)
		return nil, noop, false
	}

	form.Image = &usecase.ImageUpload{
		FileName:    header.Filename,
		ContentType: contentTypeOf(header.Header.Get("Content-Type"), header.Filename),
		Size:        header.Size,
		Content:     file,
	}
	return form, func() {
		_ = file.Close()
		done()
	}, true
}

// contentTypeOf берет MIME-тип из заголовка части, иначе по расширению файла
func contentTypeOf(declared, fileName string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
		mt, _, _ := mime.ParseMediaType(byExt)
		return mt
	}
	return "application/octet-stream"
}
