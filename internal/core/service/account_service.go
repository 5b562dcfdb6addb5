package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
	"github.com/wfa22/PrivacyGuard/internal/core/ports"
)

// AccountService implements the admin-facing account operations. Every
// mutation that changes what an account is allowed to do revokes the
// account's sessions before reporting success.
type AccountService struct {
	accounts ports.AccountRepository
	sessions ports.SessionRepository
	audit    AuditSink
	log      zerolog.Logger
}

func NewAccountService(
	accounts ports.AccountRepository,
	sessions ports.SessionRepository,
	audit AuditSink,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{accounts: accounts, sessions: sessions, audit: audit, log: log}
}

func (s *AccountService) List(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.List(ctx)
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// ChangeRole sets the target account's role and revokes all of its sessions
// so the next refresh re-authenticates under the new role. An admin can
// never remove its own admin role, no matter how many other admins exist.
func (s *AccountService) ChangeRole(ctx context.Context, targetID, newRole, requesterID string) (*domain.Account, error) {
	if !domain.ValidRole(newRole) {
		return nil, domain.ErrInvalidRole
	}
	if targetID == requesterID && newRole != domain.RoleAdmin {
		return nil, domain.ErrSelfProtection
	}

	account, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateRole(ctx, targetID, newRole); err != nil {
		return nil, err
	}
	if err := s.sessions.RevokeAllForAccount(ctx, targetID); err != nil {
		return nil, err
	}

	s.record(domain.SecurityEvent{AccountID: targetID, Type: domain.EventRoleChanged, Detail: newRole})
	s.log.Info().Str("account_id", targetID).Str("role", newRole).Msg("role changed, sessions revoked")

	account.Role = newRole
	account.UpdatedAt = time.Now().UTC()
	return account, nil
}

// Delete removes the account and cascade-deletes its session records. An
// account can never delete itself.
func (s *AccountService) Delete(ctx context.Context, targetID, requesterID string) error {
	if targetID == requesterID {
		return domain.ErrSelfProtection
	}

	if _, err := s.accounts.FindByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllForAccount(ctx, targetID); err != nil {
		return err
	}
	if err := s.sessions.DeleteAllForAccount(ctx, targetID); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, targetID); err != nil {
		return err
	}

	s.record(domain.SecurityEvent{AccountID: targetID, Type: domain.EventAccountDeleted})
	s.log.Info().Str("account_id", targetID).Msg("account deleted, sessions purged")
	return nil
}

func (s *AccountService) record(event domain.SecurityEvent) {
	if s.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	s.audit.Enqueue(event)
}
