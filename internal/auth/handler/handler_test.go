package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksrami99/video-tube/internal/auth"
	"github.com/ksrami99/video-tube/internal/auth/token"
	"github.com/ksrami99/video-tube/internal/httpx"
	"github.com/ksrami99/video-tube/internal/media"
	"github.com/ksrami99/video-tube/internal/middleware"
	"github.com/ksrami99/video-tube/internal/user"
)

// --- fakes ---

type memRepo struct {
	byID map[string]*user.User
	seq  int
}

func newMemRepo() *memRepo { return &memRepo{byID: map[string]*user.User{}} }

func (m *memRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	u.CreatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	return u, nil
}

func (m *memRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memRepo) FindByIdentifier(ctx context.Context, username, email string) (*user.User, error) {
	for _, u := range m.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := m.FindByIdentifier(ctx, username, email)
	return err == nil, nil
}

func (m *memRepo) UpdateRefreshToken(ctx context.Context, id, tok string) error {
	if u, ok := m.byID[id]; ok {
		u.RefreshToken = tok
	}
	return nil
}

func (m *memRepo) ClearRefreshToken(ctx context.Context, id string) error {
	return m.UpdateRefreshToken(ctx, id, "")
}

type memRegistry struct {
	assets map[string]media.Asset
}

func newMemRegistry() *memRegistry { return &memRegistry{assets: map[string]media.Asset{}} }

func (m *memRegistry) Record(ctx context.Context, ref string, a media.Asset, ttl time.Duration) error {
	m.assets[ref] = a
	return nil
}

func (m *memRegistry) Resolve(ctx context.Context, ref string) (*media.Asset, error) {
	a, ok := m.assets[ref]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type memStore struct {
	puts int
}

func (m *memStore) Put(ctx context.Context, key, contentType string, body io.Reader) (*media.Asset, error) {
	m.puts++
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	return &media.Asset{URL: "http://media.local/" + key, ContentType: contentType}, nil
}

// --- harness ---

type harness struct {
	router *gin.Engine
	repo   *memRepo
	store  *memStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	uploads := newMemRegistry()
	store := &memStore{}
	issuer := token.NewIssuer("test-secret", time.Hour, 24*time.Hour)
	sessions := auth.NewSessionService(repo, uploads, issuer)

	h := NewHandler(sessions, store, uploads, Config{
		Cookies:         httpx.CookieOptions{Secure: true},
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		UploadTTL:       30 * time.Minute,
	})

	router := gin.New()
	h.RegisterRoutes(router, middleware.GinRequireAuth(middleware.NewAuthMiddleware(issuer)))

	return &harness{router: router, repo: repo, store: store}
}

func registerForm(t *testing.T, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"fullname": "Ann Lee",
		"email":    "ann@x.com",
		"username": "AnnL",
		"password": "Secret123",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	if withAvatar {
		fw, err := w.CreateFormFile("avatar", "a.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (h *harness) register(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := registerForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"annl","password":"Secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

// --- tests ---

func TestRegisterEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.register(t)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(http.StatusCreated), body["statusCode"])
	assert.Equal(t, "user registered successfully", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "annl", data["username"], "username is stored lowercased")
	assert.Contains(t, data["avatar"], "http://media.local/avatars/")
	assert.NotContains(t, data, "passwordHash")
	assert.NotContains(t, data, "refreshToken")

	assert.Equal(t, 1, h.store.puts)
}

func TestRegisterEndpoint_MissingAvatar(t *testing.T) {
	h := newHarness(t)

	body, contentType := registerForm(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "avatar file is required", env["message"])
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, http.StatusCreated, h.register(t).Code)
	rec := h.register(t)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
}

func TestLoginEndpoint_SetsCookies(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.register(t).Code)

	rec := h.login(t)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	access := cookieByName(t, cookies, httpx.AccessTokenCookie)
	refresh := cookieByName(t, cookies, httpx.RefreshTokenCookie)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.NotEmpty(t, access.Value)
	assert.NotEmpty(t, refresh.Value)

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])

	u := data["user"].(map[string]any)
	assert.Equal(t, "annl", u["username"])

	// stored refresh token matches the one handed to the client
	stored := h.repo.byID[u["id"].(string)]
	assert.Equal(t, data["refreshToken"], stored.RefreshToken)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.register(t).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"annl","password":"WrongPass1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.register(t).Code)

	loginRec := h.login(t)
	require.Equal(t, http.StatusOK, loginRec.Code)
	access := cookieByName(t, loginRec.Result().Cookies(), httpx.AccessTokenCookie)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.AddCookie(access)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// both cookies cleared
	cleared := rec.Result().Cookies()
	for _, name := range []string{httpx.AccessTokenCookie, httpx.RefreshTokenCookie} {
		c := cookieByName(t, cleared, name)
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}

	// stored refresh token emptied before the response went out
	for _, u := range h.repo.byID {
		assert.Empty(t, u.RefreshToken)
	}
}

func TestLogoutEndpoint_RequiresAuth(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
}

func TestMeEndpoint_BearerFallback(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.register(t).Code)

	loginRec := h.login(t)
	data := decodeEnvelope(t, loginRec)["data"].(map[string]any)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+data["accessToken"].(string))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, "annl", me["username"])
}
