package ports

import (
	"context"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
)

// SessionRepository defines persistence operations for refresh-token
// sessions. All lookups are by the SHA-256 hash of the raw token.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)
	// FindByHash retrieves a session regardless of its revoked state.
	// Returns domain.ErrSessionNotFound when no record matches.
	FindByHash(ctx context.Context, hash string) (*domain.Session, error)
	// RevokeActive atomically flips revoked from false to true and returns
	// the session as it was before the flip. Under concurrent calls with the
	// same hash exactly one caller wins; the rest get
	// domain.ErrSessionNotFound, same as when no active record exists.
	RevokeActive(ctx context.Context, hash string) (*domain.Session, error)
	// Revoke marks the session revoked regardless of current state. Idempotent.
	Revoke(ctx context.Context, hash string) error
	// RevokeAllForAccount revokes every session owned by the account. Idempotent.
	RevokeAllForAccount(ctx context.Context, accountID string) error
	// DeleteAllForAccount removes the account's session records outright.
	// Used only by the account-deletion cascade.
	DeleteAllForAccount(ctx context.Context, accountID string) error
}
