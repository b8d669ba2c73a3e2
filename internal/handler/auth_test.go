package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tracepoint/tracker/internal/domain"
	"github.com/tracepoint/tracker/internal/ratelimit"
	"github.com/tracepoint/tracker/internal/service"
)

type stubUserStore struct {
	user *domain.User
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if s.user != nil && strings.EqualFold(s.user.Email, email) {
		return s.user, nil
	}
	return nil, domain.ErrNotFound
}

func newAuthTestEnv(t *testing.T) (*echo.Echo, *AuthHandler) {
	t.Helper()

	hash, err := service.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store := &stubUserStore{user: &domain.User{
		ID: "user-1", Email: "admin@example.com", PasswordHash: hash,
	}}

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewAppValidator()

	h := NewAuthHandler(service.NewAuthService(store, "test-secret"), ratelimit.New())
	return e, h
}

func postLogin(e *echo.Echo, h *AuthHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Login(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	e, h := newAuthTestEnv(t)

	rec := postLogin(e, h, `{"email":"admin@example.com","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			User   domain.User       `json:"user"`
			Tokens service.TokenPair `json:"tokens"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User.ID != "user-1" {
		t.Errorf("user ID = %q, want user-1", envelope.Data.User.ID)
	}
	if envelope.Data.Tokens.AccessToken == "" {
		t.Error("access token is empty")
	}
}

func TestLoginEndpointBadPassword(t *testing.T) {
	e, h := newAuthTestEnv(t)

	rec := postLogin(e, h, `{"email":"admin@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginEndpointValidation(t *testing.T) {
	e, h := newAuthTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"x"}`},
		{"malformed email", `{"email":"not-an-email","password":"x"}`},
		{"missing password", `{"email":"admin@example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(e, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestLoginEndpointRateLimited(t *testing.T) {
	e, h := newAuthTestEnv(t)

	for i := 0; i < ratelimit.LoginMaxAttempts; i++ {
		rec := postLogin(e, h, `{"email":"admin@example.com","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, rec.Code)
		}
	}

	rec := postLogin(e, h, `{"email":"admin@example.com","password":"wrong"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status after limit = %d, want 429", rec.Code)
	}

	// The limiter keys by normalized email, so case changes don't evade it.
	rec = postLogin(e, h, `{"email":"ADMIN@example.com","password":"wrong"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status with re-cased email = %d, want 429", rec.Code)
	}

	// A different account is unaffected.
	rec = postLogin(e, h, `{"email":"other@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status for other email = %d, want 401", rec.Code)
	}
}

func TestLoginSuccessResetsLimiter(t *testing.T) {
	e, h := newAuthTestEnv(t)

	for i := 0; i < ratelimit.LoginMaxAttempts-1; i++ {
		postLogin(e, h, `{"email":"admin@example.com","password":"wrong"}`)
	}
	rec := postLogin(e, h, `{"email":"admin@example.com","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Counter cleared: failures can accumulate again from zero.
	for i := 0; i < ratelimit.LoginMaxAttempts; i++ {
		rec := postLogin(e, h, fmt.Sprintf(`{"email":"admin@example.com","password":"wrong%d"}`, i))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("post-reset attempt %d status = %d, want 401", i+1, rec.Code)
		}
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	e, h := newAuthTestEnv(t)

	rec := postLogin(e, h, `{"email":"admin@example.com","password":"correct horse"}`)
	var envelope struct {
		Data struct {
			Tokens service.TokenPair `json:"tokens"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	mw := JWTAuth(h.auth)
	next := func(c echo.Context) error {
		id, ok := GetUserID(c)
		if !ok {
			t.Error("user ID missing from context")
		}
		return c.String(http.StatusOK, id)
	}

	call := func(authHeader string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		return rec, mw(next)(e.NewContext(req, rec))
	}

	rec2, err := call("Bearer " + envelope.Data.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if rec2.Body.String() != "user-1" {
		t.Errorf("context user = %q, want user-1", rec2.Body.String())
	}

	for _, header := range []string{"", "Bearer garbage", "Basic abc", "Bearer " + envelope.Data.Tokens.RefreshToken} {
		if _, err := call(header); err != domain.ErrUnauthorized {
			t.Errorf("header %q err = %v, want ErrUnauthorized", header, err)
		}
	}
}
