package auth

import (
	"time"

	"github.com/google/uuid"
)

// NewToken builds an unsaved token for userID issued at now
func NewToken(userID uuid.UUID, now time.Time, ttl time.Duration) *Token {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Token{
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		HasExpired: false,
	}
}

// Elapsed reports whether the time-based expiry has passed
func (t *Token) Elapsed(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Usable reports whether the token may authenticate a request at now. The
// flag and the timestamp are checked independently; either one denies.
func (t *Token) Usable(now time.Time) bool {
	return !t.HasExpired && !t.Elapsed(now)
}

// Session projects the token to the caller-facing SessionInfo
func (t *Token) Session() *SessionInfo {
	return &SessionInfo{
		Token:           t.ID,
		UserID:          t.UserID,
		TokenCreatedAt:  t.CreatedAt,
		TokenExpiresAt:  t.ExpiresAt,
		TokenHasExpired: t.HasExpired,
	}
}
