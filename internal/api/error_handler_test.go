package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
)

func TestResolveError_DomainTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"wrong token type", domain.ErrInvalidTokenType, http.StatusUnauthorized, "invalid token"},
		{"unknown token", domain.ErrTokenNotRecognized, http.StatusUnauthorized, "invalid token"},
		{"reuse detected", domain.ErrReuseDetected, http.StatusUnauthorized, "invalid token"},
		{"expired token", domain.ErrTokenExpired, http.StatusUnauthorized, "token expired"},
		{"throttled", domain.ErrTooManyAttempts, http.StatusTooManyRequests, "too many login attempts"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"self protection", domain.ErrSelfProtection, http.StatusBadRequest, domain.ErrSelfProtection.Error()},
		{"invalid role", domain.ErrInvalidRole, http.StatusBadRequest, "invalid role"},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound, "account not found"},
		{"duplicate account", domain.ErrAccountExists, http.StatusConflict, "account already exists"},
		{"echo passthrough", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
		{"unknown error", errors.New("mongo: socket closed"), http.StatusInternalServerError, "internal server error"},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			c := e.NewContext(req, httptest.NewRecorder())

			code, msg := resolveError(tc.err, zerolog.Nop(), c)
			if code != tc.code {
				t.Fatalf("code = %d, want %d", code, tc.code)
			}
			if msg != tc.msg {
				t.Fatalf("msg = %q, want %q", msg, tc.msg)
			}
		})
	}
}

func TestResolveError_WrappedErrors(t *testing.T) {
	// Services wrap domain errors; the mapping must see through the wrapping.
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	wrapped := errors.Join(errors.New("refresh"), domain.ErrReuseDetected)
	code, msg := resolveError(wrapped, zerolog.Nop(), c)
	if code != http.StatusUnauthorized || msg != "invalid token" {
		t.Fatalf("wrapped reuse error mapped to %d %q", code, msg)
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := c.NoContent(http.StatusNoContent); err != nil {
		t.Fatalf("commit response: %v", err)
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	handler(errors.New("late failure"), c)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("committed response must not be rewritten, got %d", rec.Code)
	}
}
