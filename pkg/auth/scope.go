package auth

import (
	"context"
	"sync"
	"time"

	"github.com/readify/readify/pkg/contextkeys"
)

// Scope holds the caller context of a single request. It travels inside the
// request's context.Context, so concurrent requests never share one, and the
// gate clears it when the request unwinds so goroutines that captured the
// context cannot keep using the identity.
type Scope struct {
	mu      sync.RWMutex
	session *SessionInfo
}

// NewScope creates a scope holding a copy of session
func NewScope(session *SessionInfo) *Scope {
	s := &Scope{}
	if session != nil {
		cp := *session
		s.session = &cp
	}
	return s
}

// Session returns a copy of the current caller context, or nil once cleared
func (s *Scope) Session() *SessionInfo {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Expire marks the caller context as expired at the given instant and returns
// the updated copy. It returns nil when the scope was already cleared.
func (s *Scope) Expire(at time.Time) *SessionInfo {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	s.session.TokenHasExpired = true
	s.session.TokenExpiresAt = at
	cp := *s.session
	return &cp
}

// Clear drops the caller context
func (s *Scope) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

// WithScope attaches scope to ctx
func WithScope(ctx context.Context, scope *Scope) context.Context {
	return contextkeys.WithSession(ctx, scope)
}

// ScopeFromContext returns the request scope, or nil outside an admitted request
func ScopeFromContext(ctx context.Context) *Scope {
	scope, _ := ctx.Value(contextkeys.SessionKey).(*Scope)
	return scope
}

// SessionFromContext returns the caller context of the request, or nil
func SessionFromContext(ctx context.Context) *SessionInfo {
	return ScopeFromContext(ctx).Session()
}
