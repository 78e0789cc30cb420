package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/auth"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/config"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/database/memory"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/handler"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/logger"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/usecase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *memFiles) UploadFile(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return "http://localhost:9000/moments/" + key, nil
}

func (f *memFiles) DeleteFile(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type pingerFunc func(ctx context.Context) error

func (p pingerFunc) Ping(ctx context.Context) error { return p(ctx) }

type testServer struct {
	t      *testing.T
	router http.Handler
	files  *memFiles
}

func newTestServer(t *testing.T, checks map[string]handler.Pinger) *testServer {
	t.Helper()
	cfg := &config.Config{
		RequestTimeout:     5 * time.Second,
		CookieSecure:       false,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		UploadFolder:       "moments-app",
		MaxUploadSize:      1 << 20,
		UploadConcurrency:  2,
	}
	log := logger.Nop()
	files := &memFiles{objects: map[string][]byte{}}

	router := NewRouter(RouterDeps{
		Config:        cfg,
		Logger:        log,
		AuthUseCase:   usecase.NewAuthUseCase(memory.NewUserStorage(), auth.NewTokenManager("test-secret", time.Hour), log),
		MomentUseCase: usecase.NewMomentUseCase(memory.NewMomentStorage(), files, nil, cfg.UploadFolder, log),
		UploadLimiter: make(chan struct{}, cfg.UploadConcurrency),
		HealthChecks:  checks,
	})
	return &testServer{t: t, router: router, files: files}
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, target, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *testServer) register(name, email string) string {
	s.t.Helper()
	rec := s.json(http.MethodPost, "/users/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["token"].(string)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func multipartBody(t *testing.T, fields map[string]string, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func TestUsersFlow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.json(http.MethodPost, "/users/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.NotEmpty(t, body["_id"])
	assert.Equal(t, "Ada", body["name"])
	assert.Equal(t, "https://i.ibb.co/4pDNDk1/avatar.png", body["photo"])
	assert.Equal(t, "+234", body["phone"])
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, rec.Body.String(), "password")

	cookie := tokenCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	token := cookie.Value

	rec = s.json(http.MethodPost, "/users/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email has already been registered", decode[map[string]string](t, rec)["message"])

	rec = s.json(http.MethodPost, "/users/login", "", map[string]string{"email": "ghost@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found, Please sign-up", decode[map[string]string](t, rec)["message"])
	assert.Nil(t, tokenCookie(rec))

	rec = s.json(http.MethodPost, "/users/login", "", map[string]string{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Email or password", decode[map[string]string](t, rec)["message"])
	assert.Nil(t, tokenCookie(rec))

	rec = s.json(http.MethodPost, "/users/login", "", map[string]string{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, tokenCookie(rec))

	rec = s.json(http.MethodGet, "/users/getuser", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada@example.com", decode[map[string]any](t, rec)["email"])

	rec = s.json(http.MethodPatch, "/users/updateuser", token, map[string]string{"phone": "+44 20"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "+44 20", updated["phone"])
	assert.Equal(t, "Ada", updated["name"])
	assert.Equal(t, "ada@example.com", updated["email"])

	rec = s.json(http.MethodGet, "/users/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully Logged out", decode[map[string]string](t, rec)["message"])
	cleared := tokenCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/users/loggedin", nil)
	req.AddCookie(cleared)
	rec = s.do(req, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[bool](t, rec))
}

func TestGetUser_UnknownUser(t *testing.T) {
	s := newTestServer(t, nil)

	// подписан верным ключом, но такого пользователя нет в хранилище
	token, _, err := auth.NewTokenManager("test-secret", time.Hour).Generate(uuid.New())
	require.NoError(t, err)

	rec := s.json(http.MethodGet, "/users/getuser", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User Not Found", decode[map[string]string](t, rec)["message"])
}

func TestLoginStatus(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("Ada", "ada@example.com")

	for _, tc := range []struct {
		token string
		want  bool
	}{
		{"", false},
		{"not-a-jwt", false},
		{token, true},
	} {
		rec := s.json(http.MethodGet, "/users/loggedin", tc.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.want, decode[bool](t, rec))
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/users/getuser"},
		{http.MethodGet, "/users/logout"},
		{http.MethodPatch, "/users/updateuser"},
		{http.MethodGet, "/moments"},
		{http.MethodPost, "/moments"},
		{http.MethodDelete, "/moments/8c4f4c6e-0000-0000-0000-000000000000"},
	} {
		rec := s.json(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
		assert.Equal(t, "Not authorized, please login", decode[map[string]string](t, rec)["message"])
	}

	req := httptest.NewRequest(http.MethodGet, "/users/getuser", nil)
	req.Header.Set("Authorization", "Bearer "+s.register("Ada", "ada@example.com"))
	assert.Equal(t, http.StatusOK, s.do(req, "").Code)
}

func TestMomentsFlow(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.register("Ada", "ada@example.com")
	stranger := s.register("Bob", "bob@example.com")

	png := bytes.Repeat([]byte{0x89}, 2048)
	body, contentType := multipartBody(t, map[string]string{"title": "Beach", "tags": "summer"}, "sunset.png", "image/png", png)
	req := httptest.NewRequest(http.MethodPost, "/moments", body)
	req.Header.Set("Content-Type", contentType)
	rec := s.do(req, owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[map[string]any](t, rec)
	id := created["_id"].(string)
	image := created["image"].(map[string]any)
	assert.Equal(t, "sunset.png", image["fileName"])
	assert.Equal(t, "image/png", image["fileType"])
	assert.Equal(t, "2.00 KB", image["fileSize"])
	assert.True(t, strings.HasPrefix(image["filePath"].(string), "http://localhost:9000/moments/moments-app/"))
	assert.NotContains(t, image, "objectKey")
	assert.Len(t, s.files.objects, 1)

	rec = s.json(http.MethodPost, "/moments", owner, map[string]string{"title": "Plain", "tags": "note"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.json(http.MethodGet, "/moments", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = s.json(http.MethodGet, "/moments", stranger, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = s.json(http.MethodGet, "/moments/"+id, stranger, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not authorized", decode[map[string]string](t, rec)["message"])

	rec = s.json(http.MethodGet, "/moments/not-a-uuid", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.json(http.MethodPatch, "/moments/"+id, owner, map[string]string{"title": "Sunset beach"})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[map[string]any](t, rec)
	assert.Equal(t, "Sunset beach", patched["title"])
	assert.Equal(t, "summer", patched["tags"])
	assert.Equal(t, image, patched["image"])

	rec = s.json(http.MethodPatch, "/moments/"+id, owner, map[string]string{"tags": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill all", decode[map[string]string](t, rec)["message"])

	rec = s.json(http.MethodDelete, "/moments/"+id, stranger, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.json(http.MethodDelete, "/moments/"+id, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Moment deleted.", decode[map[string]string](t, rec)["message"])

	rec = s.json(http.MethodGet, "/moments/"+id, owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Moment not found", decode[map[string]string](t, rec)["message"])
}

func TestCreateMoment_ValidationAndUploadErrors(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.register("Ada", "ada@example.com")

	body, contentType := multipartBody(t, map[string]string{"title": "No tags"}, "a.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/moments", body)
	req.Header.Set("Content-Type", contentType)
	rec := s.do(req, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.files.objects)

	body, contentType = multipartBody(t, map[string]string{"title": "t", "tags": "x"}, "notes.txt", "text/plain", []byte("hello"))
	req = httptest.NewRequest(http.MethodPost, "/moments", body)
	req.Header.Set("Content-Type", contentType)
	rec = s.do(req, owner)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Image not uploaded", decode[map[string]string](t, rec)["message"])

	body, contentType = multipartBody(t, map[string]string{"title": "t", "tags": "x"}, "huge.png", "image/png", bytes.Repeat([]byte{1}, 3<<20))
	req = httptest.NewRequest(http.MethodPost, "/moments", body)
	req.Header.Set("Content-Type", contentType)
	rec = s.do(req, owner)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.json(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	s = newTestServer(t, map[string]handler.Pinger{
		"database": pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	})
	rec = s.json(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/moments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := s.do(req, "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/moments", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = s.do(req, "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
