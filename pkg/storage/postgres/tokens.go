package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/auth"
)

// TokenRepository implements auth.TokenStore. Token reads go to the primary
// so a token is visible to Validate the moment login returns it.
type TokenRepository struct {
	cm *ConnectionManager
}

var _ auth.TokenStore = (*TokenRepository)(nil)

// NewTokenRepository creates a token repository
func NewTokenRepository(cm *ConnectionManager) *TokenRepository {
	return &TokenRepository{cm: cm}
}

const tokenColumns = `id, user_id, created_at, expires_at, has_expired`

func scanToken(row interface{ Scan(...interface{}) error }) (*auth.Token, error) {
	var t auth.Token
	if err := row.Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.ExpiresAt, &t.HasExpired); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateToken inserts the token under a fresh id
func (r *TokenRepository) CreateToken(ctx context.Context, token *auth.Token) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.cm.Primary().ExecContext(ctx,
		`INSERT INTO tokens (`+tokenColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		id, token.UserID, token.CreatedAt, token.ExpiresAt, token.HasExpired)
	if err != nil {
		return uuid.Nil, storeError("insert token", err)
	}
	return id, nil
}

// GetTokenByID returns the token or nil
func (r *TokenRepository) GetTokenByID(ctx context.Context, id uuid.UUID) (*auth.Token, error) {
	row := r.cm.Primary().QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE id = $1`, id)
	t, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get token", err)
	}
	return t, nil
}

// GetTokenByUserID returns the user's most recent unflagged token or nil
func (r *TokenRepository) GetTokenByUserID(ctx context.Context, userID uuid.UUID) (*auth.Token, error) {
	row := r.cm.Primary().QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens
		 WHERE user_id = $1 AND has_expired = FALSE
		 ORDER BY created_at DESC
		 LIMIT 1`, userID)
	t, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get token by user", err)
	}
	return t, nil
}

// UpdateToken persists the token's expiry state
func (r *TokenRepository) UpdateToken(ctx context.Context, token *auth.Token) error {
	_, err := r.cm.Primary().ExecContext(ctx,
		`UPDATE tokens SET expires_at = $2, has_expired = $3 WHERE id = $1`,
		token.ID, token.ExpiresAt, token.HasExpired)
	if err != nil {
		return storeError("update token", err)
	}
	return nil
}

// ExpireAllTokensByUser flags every token of the user in one statement
func (r *TokenRepository) ExpireAllTokensByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	res, err := r.cm.Primary().ExecContext(ctx,
		`UPDATE tokens
		 SET has_expired = TRUE,
		     expires_at = LEAST(expires_at, $2)
		 WHERE user_id = $1`, userID, now)
	if err != nil {
		return 0, storeError("expire tokens", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("expire tokens", err)
	}
	return n, nil
}

// FlagElapsedTokens sets the flag on unflagged tokens whose expiry has passed
func (r *TokenRepository) FlagElapsedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.cm.Primary().ExecContext(ctx,
		`UPDATE tokens SET has_expired = TRUE
		 WHERE has_expired = FALSE AND expires_at <= $1`, now)
	if err != nil {
		return 0, storeError("flag elapsed tokens", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("flag elapsed tokens", err)
	}
	return n, nil
}
