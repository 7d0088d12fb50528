package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arogya-his/arogya-his/internal/auth"
	"github.com/arogya-his/arogya-his/internal/shared"
	_ "github.com/arogya-his/arogya-his/testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(handler *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r
}

type stubRepo struct {
	user            *auth.User
	sessionsCreated int
	sessionsDeleted int
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrInvalidCredentials
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessionsCreated++
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.sessionsDeleted++
	return nil
}

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(testLogger(), auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.User{
		ID:           1,
		Email:        "cashier@test.local",
		Name:         "Cashier",
		PasswordHash: string(hashed),
		IsActive:     true,
	}
}

func doLogin(t *testing.T, handler *auth.Handler, sessions *shared.SessionManager, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	router := newRouter(handler)
	router.ServeHTTP(res, req)
	require.NoError(t, sessions.Commit(req.Context(), res, req, sess))
	return res
}

func TestLoginSuccessIssuesCSRFToken(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correct-pass-123")}
	handler, sessions := newAuthHandler(t, repo)

	res := doLogin(t, handler, sessions, `{"email":"cashier@test.local","password":"correct-pass-123"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		UserID    int64  `json:"user_id"`
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, int64(1), body.UserID)
	require.NotEmpty(t, body.CSRFToken)
	require.Equal(t, 1, repo.sessionsCreated)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correct-pass-123")}
	handler, sessions := newAuthHandler(t, repo)

	res := doLogin(t, handler, sessions, `{"email":"cashier@test.local","password":"wrong-pass-123"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Zero(t, repo.sessionsCreated)
}

func TestLoginInactiveUserRejected(t *testing.T) {
	user := activeUser(t, "correct-pass-123")
	user.IsActive = false
	handler, sessions := newAuthHandler(t, &stubRepo{user: user})

	res := doLogin(t, handler, sessions, `{"email":"cashier@test.local","password":"correct-pass-123"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginValidation(t *testing.T) {
	handler, sessions := newAuthHandler(t, &stubRepo{})

	res := doLogin(t, handler, sessions, `{"email":"not-an-email","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLogoutRemovesSessionRow(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correct-pass-123")}
	handler, sessions := newAuthHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser(1)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(res, req)
	require.NoError(t, sessions.Commit(req.Context(), res, req, sess))

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, 1, repo.sessionsDeleted)
}
