package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
	"github.com/wfa22/PrivacyGuard/internal/core/ports"
	"github.com/wfa22/PrivacyGuard/internal/pkg/password"
	"github.com/wfa22/PrivacyGuard/internal/pkg/token"
)

// LoginThrottle abstracts the per-email attempt limiter (Redis).
type LoginThrottle interface {
	Allowed(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuditSink receives security events for asynchronous persistence.
type AuditSink interface {
	Enqueue(event domain.SecurityEvent)
}

// SessionService implements the credential and session lifecycle: login,
// refresh rotation with reuse detection, and logout.
type SessionService struct {
	accounts   ports.AccountRepository
	sessions   ports.SessionRepository
	codec      *token.Codec
	throttle   LoginThrottle
	audit      AuditSink
	log        zerolog.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewSessionService(
	accounts ports.AccountRepository,
	sessions ports.SessionRepository,
	codec *token.Codec,
	throttle LoginThrottle,
	audit AuditSink,
	log zerolog.Logger,
	accessTTL, refreshTTL time.Duration,
) *SessionService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &SessionService{
		accounts:   accounts,
		sessions:   sessions,
		codec:      codec,
		throttle:   throttle,
		audit:      audit,
		log:        log,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates a new account with the "user" role. Role escalation only
// happens through AccountService.ChangeRole.
func (s *SessionService) Register(ctx context.Context, username, email, pw string) (*domain.Account, error) {
	if username == "" || email == "" || pw == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := password.Hash(pw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.accounts.Create(ctx, account)
}

// Login verifies the credentials and starts a new session chain. A wrong
// password and an unknown email are indistinguishable to the caller; both
// return domain.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, pw, deviceInfo string) (*ports.TokenPair, *domain.Account, error) {
	if email == "" || pw == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("throttle check failed, allowing login attempt")
		} else if !allowed {
			return nil, nil, domain.ErrTooManyAttempts
		}
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.loginFailed(ctx, email, "", deviceInfo)
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !password.Verify(pw, account.PasswordHash) {
		s.loginFailed(ctx, email, account.ID, deviceInfo)
		return nil, nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("throttle reset failed")
		}
	}

	pair, err := s.issuePair(ctx, account, deviceInfo)
	if err != nil {
		return nil, nil, err
	}

	s.record(domain.SecurityEvent{AccountID: account.ID, Type: domain.EventLogin, DeviceInfo: deviceInfo})
	s.log.Info().Str("account_id", account.ID).Msg("login succeeded")
	return pair, account, nil
}

// Refresh rotates a refresh token. The presented token's session is revoked
// and a replacement with a full TTL is created for the same account — one
// logical step, raced through an atomic conditional update so that two
// concurrent presentations of the same token yield exactly one rotation.
// The loser observes a revoked record, which is the reuse path: every
// session of the owning account is revoked before the error surfaces.
func (s *SessionService) Refresh(ctx context.Context, rawToken, deviceInfo string) (*ports.TokenPair, error) {
	hash := hashToken(rawToken)

	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			_ = s.sessions.Revoke(context.WithoutCancel(ctx), hash)
			return nil, domain.ErrTokenExpired
		}
		// Forged or garbled tokens cannot have a stored hash; answering
		// anything more specific would leak validity information.
		return nil, domain.ErrTokenNotRecognized
	}
	if claims.TokenType != token.TypeRefresh {
		return nil, domain.ErrInvalidTokenType
	}

	// Once rotation starts it must reach a terminal state even if the
	// caller disconnects mid-request.
	rctx := context.WithoutCancel(ctx)

	prior, err := s.sessions.RevokeActive(rctx, hash)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, s.handleInactive(rctx, hash, deviceInfo)
	}

	if !time.Now().UTC().Before(prior.ExpiresAt) {
		// RevokeActive already retired the record.
		return nil, domain.ErrTokenExpired
	}

	// Re-read the account so the new access token carries the current role,
	// not the role at original issuance. Runs on the detached context: the
	// old session is already revoked, so failing here would strand the chain.
	account, err := s.accounts.FindByID(rctx, prior.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrTokenNotRecognized
		}
		return nil, err
	}

	pair, err := s.issuePair(rctx, account, deviceInfo)
	if err != nil {
		return nil, err
	}

	s.record(domain.SecurityEvent{AccountID: account.ID, Type: domain.EventRefreshRotated, DeviceInfo: deviceInfo})
	return pair, nil
}

// handleInactive classifies a refresh attempt that lost the RevokeActive
// race or targeted an already-retired record.
func (s *SessionService) handleInactive(ctx context.Context, hash, deviceInfo string) error {
	prior, err := s.sessions.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrTokenNotRecognized
		}
		return err
	}

	// A revoked token being presented again is either a stale client or an
	// attacker replaying a stolen token after the legitimate client rotated
	// past it. The two cases cannot be told apart, so the whole account's
	// sessions are revoked.
	if err := s.sessions.RevokeAllForAccount(ctx, prior.AccountID); err != nil {
		return err
	}

	s.record(domain.SecurityEvent{AccountID: prior.AccountID, Type: domain.EventReuseDetected, DeviceInfo: deviceInfo})
	s.log.Warn().Str("account_id", prior.AccountID).Msg("refresh token reuse detected, all sessions revoked")
	return domain.ErrReuseDetected
}

// Logout revokes the session behind rawToken when it belongs to requesterID.
// Unknown tokens and ownership mismatches are silent no-ops so that logout
// never reveals whether a token exists.
func (s *SessionService) Logout(ctx context.Context, rawToken, requesterID string) error {
	if _, err := s.codec.Decode(rawToken); err != nil {
		return nil
	}

	hash := hashToken(rawToken)
	session, err := s.sessions.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if session.AccountID != requesterID {
		return nil
	}

	if err := s.sessions.Revoke(ctx, hash); err != nil {
		return err
	}

	s.record(domain.SecurityEvent{AccountID: requesterID, Type: domain.EventLogout, DeviceInfo: session.DeviceInfo})
	return nil
}

// issuePair issues a fresh access/refresh pair and persists the session
// record keyed by the refresh token's hash. The refresh TTL always starts
// from now (sliding expiry), never from the chain's original issuance.
func (s *SessionService) issuePair(ctx context.Context, account *domain.Account, deviceInfo string) (*ports.TokenPair, error) {
	access, err := s.codec.IssueAccess(account.ID, account.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefresh(account.ID, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = s.sessions.Create(ctx, &domain.Session{
		AccountID:  account.ID,
		TokenHash:  hashToken(refresh),
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.refreshTTL),
	})
	if err != nil {
		return nil, err
	}

	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *SessionService) loginFailed(ctx context.Context, email, accountID, deviceInfo string) {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("throttle record failed")
		}
	}
	s.record(domain.SecurityEvent{AccountID: accountID, Type: domain.EventLoginFailed, DeviceInfo: deviceInfo})
}

func (s *SessionService) record(event domain.SecurityEvent) {
	if s.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	s.audit.Enqueue(event)
}

// hashToken maps a raw refresh token to its storage key. Only this hash is
// ever persisted, so a database compromise does not leak usable tokens.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
