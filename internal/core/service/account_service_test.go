package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
)

type accountFixture struct {
	svc    *AccountService
	f      *fixture
	admin  *domain.Account
	admin2 *domain.Account
	user   *domain.Account
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	f := newFixture(t)
	svc := NewAccountService(f.accounts, f.sessions, f.audit, zerolog.Nop())

	admin := f.register(t, "root", "root@x.com", "pw")
	admin2 := f.register(t, "root2", "root2@x.com", "pw")
	user := f.register(t, "alice", "alice@x.com", "pw")
	for _, id := range []string{admin.ID, admin2.ID} {
		if err := f.accounts.UpdateRole(context.Background(), id, domain.RoleAdmin); err != nil {
			t.Fatalf("seed admin: %v", err)
		}
	}
	admin.Role, admin2.Role = domain.RoleAdmin, domain.RoleAdmin
	return &accountFixture{svc: svc, f: f, admin: admin, admin2: admin2, user: user}
}

func TestAccountService_ChangeRole_RevokesSessions(t *testing.T) {
	af := newAccountFixture(t)
	pair, _, err := af.f.svc.Login(context.Background(), "alice@x.com", "pw", "ua")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	promoted, err := af.svc.ChangeRole(context.Background(), af.user.ID, domain.RoleAdmin, af.admin.ID)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if promoted.Role != domain.RoleAdmin {
		t.Fatalf("role not updated: %s", promoted.Role)
	}

	// Pre-change refresh tokens must stop working.
	if _, err := af.f.svc.Refresh(context.Background(), pair.RefreshToken, "ua"); err == nil {
		t.Fatalf("pre-change refresh token must fail after role change")
	}
}

func TestAccountService_ChangeRole_SelfDemotion(t *testing.T) {
	af := newAccountFixture(t)

	// Even with another admin present, self-demotion is refused.
	if _, err := af.svc.ChangeRole(context.Background(), af.admin.ID, domain.RoleUser, af.admin.ID); !errors.Is(err, domain.ErrSelfProtection) {
		t.Fatalf("expected ErrSelfProtection, got %v", err)
	}

	// Re-asserting one's own admin role is allowed.
	if _, err := af.svc.ChangeRole(context.Background(), af.admin.ID, domain.RoleAdmin, af.admin.ID); err != nil {
		t.Fatalf("self admin->admin should pass, got %v", err)
	}

	// Another admin may demote.
	if _, err := af.svc.ChangeRole(context.Background(), af.admin.ID, domain.RoleUser, af.admin2.ID); err != nil {
		t.Fatalf("peer demotion should pass, got %v", err)
	}
}

func TestAccountService_ChangeRole_InvalidRole(t *testing.T) {
	af := newAccountFixture(t)
	if _, err := af.svc.ChangeRole(context.Background(), af.user.ID, "superuser", af.admin.ID); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAccountService_ChangeRole_UnknownTarget(t *testing.T) {
	af := newAccountFixture(t)
	if _, err := af.svc.ChangeRole(context.Background(), "acct_404", domain.RoleAdmin, af.admin.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_Delete_Self(t *testing.T) {
	af := newAccountFixture(t)
	if err := af.svc.Delete(context.Background(), af.admin.ID, af.admin.ID); !errors.Is(err, domain.ErrSelfProtection) {
		t.Fatalf("expected ErrSelfProtection, got %v", err)
	}
	if _, err := af.f.accounts.FindByID(context.Background(), af.admin.ID); err != nil {
		t.Fatalf("account must survive refused self-deletion: %v", err)
	}
}

func TestAccountService_Delete_CascadesSessions(t *testing.T) {
	af := newAccountFixture(t)
	pair, _, err := af.f.svc.Login(context.Background(), "alice@x.com", "pw", "ua")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := af.svc.Delete(context.Background(), af.user.ID, af.admin.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := af.f.accounts.FindByID(context.Background(), af.user.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("account must be gone, got %v", err)
	}
	if _, err := af.f.sessions.FindByHash(context.Background(), hashToken(pair.RefreshToken)); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("sessions must be cascade-deleted, got %v", err)
	}
}

func TestAuditService_Process(t *testing.T) {
	repo := &recordingAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	event := domain.SecurityEvent{AccountID: "acct_1", Type: domain.EventLogin, Timestamp: time.Now().UTC()}
	if err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].Type != domain.EventLogin {
		t.Fatalf("event not persisted: %+v", repo.inserted)
	}

	if err := svc.Process(context.Background(), domain.SecurityEvent{}); err == nil {
		t.Fatalf("typeless event must be rejected")
	}
}

type recordingAuditRepo struct {
	inserted []*domain.SecurityEvent
}

func (r *recordingAuditRepo) Insert(_ context.Context, event *domain.SecurityEvent) error {
	r.inserted = append(r.inserted, event)
	return nil
}
