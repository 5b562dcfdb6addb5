package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wfa22/PrivacyGuard/internal/api/middleware"
	"github.com/wfa22/PrivacyGuard/internal/core/domain"
)

// ctxAccount extracts the account injected by the Auth middleware. Its
// presence proves the middleware ran; handlers behind Auth treat absence as
// an unauthenticated request rather than panicking on a nil account.
func ctxAccount(c echo.Context) (*domain.Account, error) {
	account := middleware.AccountFromContext(c)
	if account == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return account, nil
}

// deviceInfo derives the opaque client descriptor persisted with each
// session record. Capped so a hostile User-Agent cannot bloat the store.
func deviceInfo(c echo.Context) string {
	ua := c.Request().UserAgent()
	if ua == "" {
		return "unknown"
	}
	if len(ua) > 200 {
		ua = ua[:200]
	}
	return ua
}
