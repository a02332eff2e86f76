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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/db/dbtest"
	"github.com/vidtube/backend/internal/lib/logger"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

type stubUploader struct{}

func cdnPrefix(kind media.Kind) string {
	return fmt.Sprintf("https://cdn.test/%s/", kind)
}

func (stubUploader) Upload(_ context.Context, localPath string, kind media.Kind) (string, error) {
	media.Remove(localPath)
	return cdnPrefix(kind) + filepath.Base(localPath), nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

type testServer struct {
	router  *gin.Engine
	store   *dbtest.Memory
	tokens  *service.TokenService
	tempDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := dbtest.NewMemory()
	tokens, err := service.NewTokenService(store, service.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)

	log := logger.Discard()
	uploader := stubUploader{}
	temp := media.TempDir(t.TempDir())
	accounts := service.NewAccountService(log, store, tokens, uploader)
	cookies := SessionCookies{
		Config:     service.CookieConfig{Path: "/", Secure: true, SameSite: http.SameSiteLaxMode},
		AccessTTL:  tokens.AccessTTL(),
		RefreshTTL: tokens.RefreshTTL(),
	}

	router := NewRouter(RouterDeps{
		Log:           log,
		Auth:          accounts,
		CORSOrigins:   []string{"http://localhost:3000"},
		MaxBodyBytes:  1 << 20,
		Users:         NewUserHandler(log, accounts, cookies, temp),
		Videos:        NewVideoHandler(log, service.NewVideoService(log, store, store, uploader), temp),
		Comments:      NewCommentHandler(log, service.NewCommentService(log, store, store)),
		Likes:         NewLikeHandler(log, service.NewLikeService(log, store, store)),
		Playlists:     NewPlaylistHandler(log, service.NewPlaylistService(log, store, store)),
		Subscriptions: NewSubscriptionHandler(log, service.NewSubscriptionService(log, store, store)),
		Tweets:        NewTweetHandler(log, service.NewTweetService(log, store)),
	})

	return &testServer{router: router, store: store, tokens: tokens, tempDir: string(temp)}
}

func (s *testServer) seedUser(t *testing.T, password string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := s.store.CreateUser(context.Background(), model.NewUser{
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		Fullname:     gofakeit.Name(),
		Avatar:       gofakeit.URL(),
		PasswordHash: string(hash),
	})
	require.NoError(t, err)
	return user
}

func (s *testServer) accessToken(t *testing.T, userID string) string {
	t.Helper()

	pair, err := s.tokens.IssueTokenPair(context.Background(), userID)
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// multipartRequest builds a form post. files maps field name to file name;
// each file gets a few bytes of content.
func multipartRequest(t *testing.T, path string, fields, files map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(gofakeit.LoremIpsumSentence(4)))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out))
	return out
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSessionRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/users/getUser", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.Equal(t, "unauthorized request", env.Message)
	assert.NotNil(t, env.Errors)
}

func TestSessionRejectsInvalidTokenWithBadRequest(t *testing.T) {
	s := newTestServer(t)

	// A token signed with the right secret for an account this server does
	// not know.
	elsewhere := dbtest.NewMemory()
	ghost, err := elsewhere.CreateUser(context.Background(), model.NewUser{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		Fullname: gofakeit.Name(),
	})
	require.NoError(t, err)
	otherTokens, err := service.NewTokenService(elsewhere, service.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)
	ghostPair, err := otherTokens.IssueTokenPair(context.Background(), ghost.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "refresh token", token: ghostPair.RefreshToken},
		{name: "unknown account", token: ghostPair.AccessToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(bearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/getUser", nil), tt.token))
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.False(t, decode(t, w).Success)
		})
	}
}

func TestSessionCookieWinsOverHeader(t *testing.T) {
	s := newTestServer(t)
	alice := s.seedUser(t, "alice-password")
	bob := s.seedUser(t, "bob-password")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/getUser", nil)
	req.AddCookie(&http.Cookie{Name: service.AccessCookieName, Value: s.accessToken(t, alice.ID)})
	bearer(req, s.accessToken(t, bob.ID))

	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeData[model.CurrentUserResponse](t, w)
	assert.Equal(t, alice.ID, got.User.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/getUser", nil)
	req.AddCookie(&http.Cookie{Name: service.AccessCookieName, Value: "broken"})
	bearer(req, s.accessToken(t, bob.ID))

	w = s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func preflight(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/getUser", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	return req
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	w := s.do(preflight("http://localhost:3000"))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(preflight("https://evil.example"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = s.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSSimpleRequestFromListedOrigin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := s.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"), "methods are only advertised on preflight")
}

func TestNewCORSPolicyNormalizesOrigins(t *testing.T) {
	p := newCORSPolicy([]string{" https://app.example/ ", "", "http://localhost:3000"})

	assert.True(t, p.allows("https://app.example"))
	assert.True(t, p.allows("http://localhost:3000"))
	assert.False(t, p.allows(""))
	assert.False(t, p.allows("https://other.example"))
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	s := newTestServer(t)
	username := gofakeit.Username()
	email := gofakeit.Email()
	password := gofakeit.Password(true, true, true, false, false, 16)

	w := s.do(multipartRequest(t, "/api/v1/users/register", map[string]string{
		"fullname": gofakeit.Name(),
		"email":    email,
		"username": username,
		"password": password,
	}, map[string]string{"avatar": "me.png"}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	registered := decodeData[model.User](t, w)
	assert.Equal(t, db.NormalizeIdentity(username), registered.Username)
	assert.True(t, strings.HasPrefix(registered.Avatar, cdnPrefix(media.KindAvatar)), registered.Avatar)
	assert.NotContains(t, w.Body.String(), "password")

	staged, err := os.ReadDir(s.tempDir)
	require.NoError(t, err)
	assert.Empty(t, staged, "staged uploads are removed")

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", model.LoginRequest{
		Email:    email,
		Password: password,
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	login := decodeData[model.LoginResponse](t, w)
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)

	access := cookieByName(w, service.AccessCookieName)
	require.NotNil(t, access)
	assert.Equal(t, login.AccessToken, access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)

	refresh := cookieByName(w, service.RefreshCookieName)
	require.NotNil(t, refresh)
	assert.Equal(t, login.RefreshToken, refresh.Value)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: service.RefreshCookieName, Value: login.RefreshToken})
	w = s.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rotated := decodeData[model.TokenPair](t, w)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", model.RefreshRequest{
		RefreshToken: login.RefreshToken,
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a rotated refresh token is single use")

	w = s.do(bearer(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), rotated.AccessToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cleared := cookieByName(w, service.AccessCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", model.RefreshRequest{
		RefreshToken: rotated.RefreshToken,
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "logout revokes the refresh token")
}

func TestRegisterRequiresAvatar(t *testing.T) {
	s := newTestServer(t)

	w := s.do(multipartRequest(t, "/api/v1/users/register", map[string]string{
		"fullname": gofakeit.Name(),
		"email":    gofakeit.Email(),
		"username": gofakeit.Username(),
		"password": "secret-password",
	}, nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "right-password")

	tests := []struct {
		name string
		req  model.LoginRequest
		want int
	}{
		{name: "missing identity", req: model.LoginRequest{Password: "x"}, want: http.StatusBadRequest},
		{name: "unknown user", req: model.LoginRequest{Username: "nobody-here", Password: "x"}, want: http.StatusNotFound},
		{name: "wrong password", req: model.LoginRequest{Username: user.Username, Password: "wrong"}, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", tt.req))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Nil(t, cookieByName(w, service.AccessCookieName))
		})
	}
}

func TestChangePasswordThenLogin(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "old-password")
	token := s.accessToken(t, user.ID)

	w := s.do(bearer(jsonRequest(t, http.MethodPost, "/api/v1/users/changePassword", model.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "new-password",
	}), token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(bearer(jsonRequest(t, http.MethodPost, "/api/v1/users/changePassword", model.ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "new-password",
	}), token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", model.LoginRequest{
		Username: user.Username,
		Password: "new-password",
	}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChannelProfileOptionalSession(t *testing.T) {
	s := newTestServer(t)
	channel := s.seedUser(t, "channel-password")
	viewer := s.seedUser(t, "viewer-password")
	_, err := s.store.CreateSubscription(context.Background(), viewer.ID, channel.ID)
	require.NoError(t, err)

	path := "/api/v1/users/c/" + channel.Username

	w := s.do(httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	anon := decodeData[model.ChannelProfile](t, w)
	assert.Equal(t, int64(1), anon.SubscribersCount)
	assert.False(t, anon.IsSubscribed)

	w = s.do(bearer(httptest.NewRequest(http.MethodGet, path, nil), s.accessToken(t, viewer.ID)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeData[model.ChannelProfile](t, w).IsSubscribed)

	w = s.do(bearer(httptest.NewRequest(http.MethodGet, path, nil), "garbage"))
	assert.Equal(t, http.StatusOK, w.Code, "a bad token on an optional route is ignored")

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/users/c/nobody-here", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "password")

	req := bearer(httptest.NewRequest(http.MethodPost, "/api/v1/tweets/postTweet",
		bytes.NewReader(bytes.Repeat([]byte("a"), 2<<20))), s.accessToken(t, user.ID))
	req.Header.Set("Content-Type", "application/json")

	w := s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
