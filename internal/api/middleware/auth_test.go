package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
	"github.com/wfa22/PrivacyGuard/internal/pkg/token"
)

type stubAccounts struct {
	accounts map[string]*domain.Account
	findErr  error
}

func (s *stubAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if a, ok := s.accounts[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccounts) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	return a, nil
}

func (s *stubAccounts) FindByEmail(_ context.Context, _ string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccounts) List(_ context.Context) ([]*domain.Account, error) { return nil, nil }
func (s *stubAccounts) UpdateRole(_ context.Context, _, _ string) error   { return nil }
func (s *stubAccounts) Delete(_ context.Context, _ string) error          { return nil }

func newAuthFixture() (*token.Codec, *stubAccounts, echo.MiddlewareFunc) {
	codec := token.NewCodec("secret")
	accounts := &stubAccounts{accounts: map[string]*domain.Account{
		"acct_1": {ID: "acct_1", Username: "alice", Role: domain.RoleAdmin},
	}}
	return codec, accounts, Auth(codec, accounts)
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, bool, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called, c
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	codec, _, mw := newAuthFixture()
	raw, err := codec.IssueAccess("acct_1", domain.RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, called, c := invoke(t, mw, "Bearer "+raw)
	if !called {
		t.Fatalf("next not called, status %d", rec.Code)
	}

	account := AccountFromContext(c)
	if account == nil || account.ID != "acct_1" {
		t.Fatalf("account not injected: %+v", account)
	}
	if c.Get(ContextRole) != domain.RoleAdmin {
		t.Fatalf("role not injected")
	}
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	codec, _, mw := newAuthFixture()
	raw, err := codec.IssueRefresh("acct_1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, called, _ := invoke(t, mw, "Bearer "+raw)
	if called {
		t.Fatalf("refresh token must not authenticate a request")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_DeletedAccount(t *testing.T) {
	codec, accounts, mw := newAuthFixture()
	raw, _ := codec.IssueAccess("acct_1", domain.RoleAdmin, time.Minute)
	delete(accounts.accounts, "acct_1")

	rec, called, _ := invoke(t, mw, "Bearer "+raw)
	if called {
		t.Fatalf("deleted account must not authenticate")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_StoreUnavailable(t *testing.T) {
	codec, accounts, mw := newAuthFixture()
	raw, _ := codec.IssueAccess("acct_1", domain.RoleAdmin, time.Minute)
	accounts.findErr = errors.New("connection refused")

	rec, called, _ := invoke(t, mw, "Bearer "+raw)
	if called {
		t.Fatalf("store outage must not authenticate")
	}
	// An infrastructure failure is not an auth verdict: it must surface as a
	// server error, never as 401.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	_, _, mw := newAuthFixture()
	rec, called, _ := invoke(t, mw, "")
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddleware_BadSignature(t *testing.T) {
	_, _, mw := newAuthFixture()
	forged, err := token.NewCodec("other-secret").IssueAccess("acct_1", domain.RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, called, _ := invoke(t, mw, "Bearer "+forged)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	codec, _, mw := newAuthFixture()
	raw, err := codec.IssueAccess("acct_1", domain.RoleAdmin, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, called, _ := invoke(t, mw, "Bearer "+raw)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d (called=%v)", rec.Code, called)
	}
}
