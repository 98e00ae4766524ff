package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTokenTTL is how long a freshly issued token stays valid
const DefaultTokenTTL = 8 * time.Hour

// Token is the persisted session credential. Its ID is the bearer value
// clients send back in the Authorization header.
type Token struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	HasExpired bool      `json:"has_expired"` // forced/cached expiry, set on logout or when found elapsed
}

// SessionInfo is the projection of a validated token handed to callers and
// stored as the request's caller context
type SessionInfo struct {
	Token           uuid.UUID `json:"token"`
	UserID          uuid.UUID `json:"user_id"`
	TokenCreatedAt  time.Time `json:"token_created_at"`
	TokenExpiresAt  time.Time `json:"token_expires_at"`
	TokenHasExpired bool      `json:"token_has_expired"`
}

// LogoutInfo is returned by a successful logout
type LogoutInfo struct {
	Token           uuid.UUID `json:"token"`
	TokenHasExpired bool      `json:"token_has_expired"`
}

// LoginRequest carries the credentials presented at login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is the slice of a user the session manager needs
type Identity struct {
	ID       uuid.UUID
	Email    string
	IsActive bool
}

// TokenStore persists tokens. Lookups return (nil, nil) when nothing matches.
type TokenStore interface {
	// CreateToken inserts the token and returns the identifier the store
	// assigned; uuid.Nil means nothing was written.
	CreateToken(ctx context.Context, token *Token) (uuid.UUID, error)
	GetTokenByID(ctx context.Context, id uuid.UUID) (*Token, error)
	// GetTokenByUserID returns the most recent token of the user whose
	// expired flag is not set yet.
	GetTokenByUserID(ctx context.Context, userID uuid.UUID) (*Token, error)
	UpdateToken(ctx context.Context, token *Token) error
	// ExpireAllTokensByUser flags every token of the user as expired and pulls
	// any future expiry back to now, returning the rows touched.
	ExpireAllTokensByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	// FlagElapsedTokens sets the expired flag on unflagged tokens whose
	// expiry is not after now.
	FlagElapsedTokens(ctx context.Context, now time.Time) (int64, error)
}

// UserDirectory resolves users for login and logout. Missing users are
// reported as apperrors NotFound failures.
type UserDirectory interface {
	FindIdentityByEmail(ctx context.Context, email string) (*Identity, error)
	FindIdentityByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	GetPasswordHash(ctx context.Context, userID uuid.UUID) (string, error)
}
