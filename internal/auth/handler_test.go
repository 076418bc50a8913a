package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/shared"
	_ "github.com/gatehouse-io/gatehouse/testing"
)

type stubRepo struct {
	cred *auth.Credential
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (auth.Credential, error) {
	if s.cred == nil || s.cred.Email != email {
		return auth.Credential{}, shared.ErrNotFound
	}
	return *s.cred, nil
}

func newAuthHandler(t *testing.T, repo auth.RepositoryPort) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func doLogin(t *testing.T, handler *auth.Handler, sm *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()

	router := chi.NewRouter()
	handler.MountRoutes(router)
	router.ServeHTTP(res, req)
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sm := newAuthHandler(t, &stubRepo{cred: &auth.Credential{
		AccountID:    1,
		Email:        "user@test.local",
		PasswordHash: string(hashed),
	}})

	res, sess := doLogin(t, handler, sm, `{"email":"user@test.local","password":"correct-password"}`)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if sess.User() != "1" {
		t.Fatalf("expected session user 1, got %q", sess.User())
	}
	if !strings.Contains(res.Body.String(), "csrf_token") {
		t.Fatalf("expected csrf token in response body")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sm := newAuthHandler(t, &stubRepo{cred: &auth.Credential{
		AccountID:    1,
		Email:        "user@test.local",
		PasswordHash: string(hashed),
	}})

	res, sess := doLogin(t, handler, sm, `{"email":"user@test.local","password":"wrong-password"}`)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if sess.User() != "" {
		t.Fatalf("expected no session user on failed login")
	}
}

func TestLoginUnknownAccountSameError(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})

	res, _ := doLogin(t, handler, sm, `{"email":"ghost@test.local","password":"whatever-pass"}`)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "invalid credentials") {
		t.Fatalf("expected opaque invalid credentials message, got %s", res.Body.String())
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})

	res, _ := doLogin(t, handler, sm, `{"email":`)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
