package domain

import (
	"errors"
	"time"
)

var ErrInvalidTokenType = errors.New("invalid token type")
var ErrTokenNotRecognized = errors.New("refresh token not recognized")
var ErrTokenExpired = errors.New("refresh token expired")
var ErrReuseDetected = errors.New("refresh token reuse detected")
var ErrSessionNotFound = errors.New("session not found")

// Session is the durable record of one issued refresh token. Only the
// SHA-256 hash of the token is stored; the raw value never touches the
// database. A revoked or expired record is terminal — the chain continues
// through the replacement record created at rotation, or not at all.
type Session struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	TokenHash  string    `json:"-"`
	DeviceInfo string    `json:"device_info"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Revoked    bool      `json:"revoked"`
}

// Active reports whether the session can still rotate at time now.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

// Security event types recorded in the audit trail.
const (
	EventLogin          = "login"
	EventLoginFailed    = "login_failed"
	EventRefreshRotated = "refresh_rotated"
	EventReuseDetected  = "reuse_detected"
	EventLogout         = "logout"
	EventRoleChanged    = "role_changed"
	EventAccountDeleted = "account_deleted"
)

// SecurityEvent is an audit-trail entry for an auth-relevant action.
type SecurityEvent struct {
	AccountID  string
	Type       string
	DeviceInfo string
	Detail     string
	Timestamp  time.Time
}
