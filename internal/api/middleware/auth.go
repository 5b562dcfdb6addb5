package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
	"github.com/wfa22/PrivacyGuard/internal/core/ports"
	"github.com/wfa22/PrivacyGuard/internal/pkg/token"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextAccount = "account"
	ContextRole    = "role"
)

// Auth validates the bearer access token and injects the caller's account
// into the request context. The account is re-read from storage on every
// request, so a deleted account fails immediately and role checks always see
// the current role, not the role at token issuance. All failure modes
// collapse into a single 401 response.
func Auth(codec *token.Codec, accounts ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := codec.Decode(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.TokenType != token.TypeAccess {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			account, err := accounts.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				// Deleted accounts fall through here: stateless access
				// tokens cannot be revoked, so the lookup is the revocation.
				if errors.Is(err, domain.ErrAccountNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				// A store failure is not an auth verdict.
				return err
			}

			c.Set(ContextAccount, account)
			c.Set(ContextRole, account.Role)

			return next(c)
		}
	}
}

// AccountFromContext returns the account stashed by Auth, or nil when the
// middleware did not run.
func AccountFromContext(c echo.Context) *domain.Account {
	account, _ := c.Get(ContextAccount).(*domain.Account)
	return account
}
