package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
	"github.com/wfa22/PrivacyGuard/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists security events to
// the audit repository. Failures surface to the dispatcher, which logs and
// drops — audit writes never block or fail a request.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Process(ctx context.Context, event domain.SecurityEvent) error {
	if event.Type == "" {
		return fmt.Errorf("audit: event without type")
	}
	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}

	s.log.Debug().
		Str("type", event.Type).
		Str("account_id", event.AccountID).
		Msg("security event recorded")
	return nil
}
