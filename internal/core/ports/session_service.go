package ports

import (
	"context"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
)

// TokenPair is the credential pair returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService orchestrates the credential and session lifecycle.
type SessionService interface {
	Register(ctx context.Context, username, email, password string) (*domain.Account, error)
	// Login verifies credentials and starts a new session chain. Unknown
	// account and wrong password both return domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password, deviceInfo string) (*TokenPair, *domain.Account, error)
	// Refresh rotates a refresh token: the presented token's session is
	// revoked and a replacement with a full TTL is created in one step.
	// Presenting an already-revoked token revokes every session of the
	// owning account and returns domain.ErrReuseDetected.
	Refresh(ctx context.Context, refreshToken, deviceInfo string) (*TokenPair, error)
	// Logout revokes the session behind refreshToken when it belongs to
	// requesterID. Unknown tokens and ownership mismatches are silent no-ops.
	Logout(ctx context.Context, refreshToken, requesterID string) error
}
