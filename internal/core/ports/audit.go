package ports

import (
	"context"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
)

// AuditService persists security events delivered by the dispatcher.
type AuditService interface {
	Process(ctx context.Context, event domain.SecurityEvent) error
}

// AuditRepository handles security-event persistence.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.SecurityEvent) error
}
