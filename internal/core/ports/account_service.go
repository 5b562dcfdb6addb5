package ports

import (
	"context"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
)

// AccountService exposes the admin-facing account operations. Role changes
// and deletions revoke every session of the affected account before they
// report success, forcing re-authentication under the new state.
type AccountService interface {
	List(ctx context.Context) ([]*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// ChangeRole sets the target account's role. Fails with
	// domain.ErrSelfProtection when an admin tries to demote itself.
	ChangeRole(ctx context.Context, targetID, newRole, requesterID string) (*domain.Account, error)
	// Delete removes the account and cascade-deletes its sessions. Fails
	// with domain.ErrSelfProtection when targetID == requesterID.
	Delete(ctx context.Context, targetID, requesterID string) error
}
