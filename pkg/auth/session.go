package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/readify/readify/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// User-facing failure messages
const (
	MsgEmptyAuthorization = "Authorization cannot be empty."
	MsgUnauthorized       = "Unauthorized."
	MsgTokenExpired       = "Token has expired."
	MsgEmptyCredentials   = "Email and Password cannot be empty."
	MsgInvalidCredentials = "Email or password is incorrect."
	MsgNotAuthenticated   = "No login or authentication was made."
	MsgUserNotFound       = "User not found!"
	MsgTokenStoreFailure  = "Something went wrong, try again later."
)

// logoutExpiryBackoff pulls the caller context's expiry into the past on logout
const logoutExpiryBackoff = time.Hour

// SessionManager owns the token state machine: login issues or reuses a
// token, Validate admits or rejects a token, Logout expires every token of
// the caller.
type SessionManager struct {
	tokens TokenStore
	users  UserDirectory
	clock  clockwork.Clock
	ttl    time.Duration
	log    *logrus.Logger
}

// Option configures a SessionManager
type Option func(*SessionManager)

// WithClock overrides the time source
func WithClock(clock clockwork.Clock) Option {
	return func(m *SessionManager) { m.clock = clock }
}

// WithTokenTTL overrides how long issued tokens stay valid
func WithTokenTTL(ttl time.Duration) Option {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *logrus.Logger) Option {
	return func(m *SessionManager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewSessionManager creates a session manager over the given stores
func NewSessionManager(tokens TokenStore, users UserDirectory, opts ...Option) *SessionManager {
	m := &SessionManager{
		tokens: tokens,
		users:  users,
		clock:  clockwork.NewRealClock(),
		ttl:    DefaultTokenTTL,
		log:    logrus.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SessionManager) now() time.Time {
	return m.clock.Now().UTC()
}

// IssueOrReuseToken authenticates the credentials and returns the caller's
// session. While a usable token exists for the user it is returned unchanged;
// otherwise a new one is minted.
func (m *SessionManager) IssueOrReuseToken(ctx context.Context, req LoginRequest) (*SessionInfo, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.InvalidInput(MsgEmptyCredentials)
	}

	identity, err := m.users.FindIdentityByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if identity == nil || !identity.IsActive {
		return nil, apperrors.NotFound(MsgUserNotFound)
	}

	hash, err := m.users.GetPasswordHash(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	ok, err := ComparePassword(hash, req.Password)
	if err != nil {
		return nil, apperrors.Internal(apperrors.MsgSomethingWentWrong, err)
	}
	if !ok {
		m.log.WithField("user_id", identity.ID).Info("login rejected: password mismatch")
		return nil, apperrors.InvalidCredentials(MsgInvalidCredentials)
	}

	now := m.now()

	existing, err := m.tokens.GetTokenByUserID(ctx, identity.ID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	if existing != nil {
		if existing.Usable(now) {
			return existing.Session(), nil
		}
		existing.HasExpired = true
		if err := m.tokens.UpdateToken(ctx, existing); err != nil {
			m.log.WithError(err).WithField("token_id", existing.ID).Warn("failed to flag elapsed token")
		}
	}

	token := NewToken(identity.ID, now, m.ttl)
	id, err := m.tokens.CreateToken(ctx, token)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindCanceled) {
			return nil, apperrors.FromStore(err)
		}
		return nil, apperrors.Internal(MsgTokenStoreFailure, err)
	}
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.KindInternal, MsgTokenStoreFailure)
	}
	token.ID = id

	m.log.WithFields(logrus.Fields{
		"user_id":    identity.ID,
		"token_id":   token.ID,
		"expires_at": token.ExpiresAt,
	}).Info("issued session token")

	return token.Session(), nil
}

// Validate resolves a bearer token into a session. A token whose expiry has
// passed is flagged in the store on the way out; failing to persist the flag
// does not change the outcome.
func (m *SessionManager) Validate(ctx context.Context, tokenID uuid.UUID) (*SessionInfo, error) {
	if tokenID == uuid.Nil {
		return nil, apperrors.InvalidInput(MsgEmptyAuthorization)
	}

	token, err := m.tokens.GetTokenByID(ctx, tokenID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if token == nil {
		return nil, apperrors.Unauthorized(MsgUnauthorized)
	}

	if token.Elapsed(m.now()) && !token.HasExpired {
		token.HasExpired = true
		if err := m.tokens.UpdateToken(ctx, token); err != nil {
			m.log.WithError(err).WithField("token_id", token.ID).Warn("failed to persist token expiry")
		}
	}

	if token.HasExpired {
		return nil, apperrors.TokenExpired(MsgTokenExpired)
	}

	return token.Session(), nil
}

// Logout expires every token of the caller found in ctx and marks the caller
// context itself as expired. Repeating it is harmless.
func (m *SessionManager) Logout(ctx context.Context) (*LogoutInfo, error) {
	scope := ScopeFromContext(ctx)
	session := scope.Session()
	if session == nil {
		return nil, apperrors.Unauthenticated(MsgNotAuthenticated)
	}

	if _, err := m.users.FindIdentityByID(ctx, session.UserID); err != nil {
		return nil, err
	}

	now := m.now()
	affected, err := m.tokens.ExpireAllTokensByUser(ctx, session.UserID, now)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindCanceled) {
			return nil, apperrors.FromStore(err)
		}
		return nil, apperrors.Internal(MsgTokenStoreFailure, err)
	}
	if affected == 0 {
		m.log.WithField("user_id", session.UserID).Debug("logout found no tokens to expire")
	}

	scope.Expire(now.Add(-logoutExpiryBackoff))

	m.log.WithFields(logrus.Fields{
		"user_id":  session.UserID,
		"token_id": session.Token,
		"expired":  affected,
	}).Info("logged out")

	return &LogoutInfo{Token: session.Token, TokenHasExpired: true}, nil
}
