package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/readify/readify/pkg/apperrors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type sessionFixture struct {
	tokens  *memoryTokenStore
	users   *memoryDirectory
	clock   *clockwork.FakeClock
	manager *SessionManager
	alice   *Identity
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	f := &sessionFixture{
		tokens: newMemoryTokenStore(),
		users:  newMemoryDirectory(),
		clock:  clockwork.NewFakeClockAt(epoch),
	}
	f.alice = f.users.add("a@x.com", "p1", true)
	f.manager = NewSessionManager(f.tokens, f.users, WithClock(f.clock), WithLogger(logger))
	return f
}

func (f *sessionFixture) login(t *testing.T) *SessionInfo {
	t.Helper()
	s, err := f.manager.IssueOrReuseToken(context.Background(), LoginRequest{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (f *sessionFixture) callerContext(t *testing.T, s *SessionInfo) (context.Context, *Scope) {
	t.Helper()
	scope := NewScope(s)
	return WithScope(context.Background(), scope), scope
}

func TestIssueOrReuseToken_IssuesNewToken(t *testing.T) {
	f := newSessionFixture(t)

	s := f.login(t)

	assert.NotEqual(t, uuid.Nil, s.Token)
	assert.Equal(t, f.alice.ID, s.UserID)
	assert.Equal(t, epoch, s.TokenCreatedAt)
	assert.Equal(t, epoch.Add(8*time.Hour), s.TokenExpiresAt)
	assert.False(t, s.TokenHasExpired)
	assert.Equal(t, 1, f.tokens.count())
}

func TestIssueOrReuseToken_ReusesUsableToken(t *testing.T) {
	f := newSessionFixture(t)

	first := f.login(t)
	f.clock.Advance(time.Hour)
	second := f.login(t)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.tokens.count())
}

func TestIssueOrReuseToken_NewTokenAfterExpiry(t *testing.T) {
	f := newSessionFixture(t)

	first := f.login(t)
	f.clock.Advance(8*time.Hour + time.Minute)
	second := f.login(t)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 2, f.tokens.count())
	assert.True(t, f.tokens.get(first.Token).HasExpired, "stale token is flagged on the way out")
	assert.Equal(t, epoch.Add(8*time.Hour+time.Minute), second.TokenCreatedAt)
}

func TestIssueOrReuseToken_NewTokenAfterLogout(t *testing.T) {
	f := newSessionFixture(t)

	first := f.login(t)
	ctx, _ := f.callerContext(t, first)
	_, err := f.manager.Logout(ctx)
	require.NoError(t, err)

	second := f.login(t)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestIssueOrReuseToken_Failures(t *testing.T) {
	tests := []struct {
		name    string
		req     LoginRequest
		kind    apperrors.Kind
		message string
	}{
		{"empty email", LoginRequest{Password: "p1"}, apperrors.KindInvalidInput, MsgEmptyCredentials},
		{"empty password", LoginRequest{Email: "a@x.com"}, apperrors.KindInvalidInput, MsgEmptyCredentials},
		{"unknown user", LoginRequest{Email: "nobody@x.com", Password: "p1"}, apperrors.KindNotFound, MsgUserNotFound},
		{"inactive user", LoginRequest{Email: "gone@x.com", Password: "p1"}, apperrors.KindNotFound, MsgUserNotFound},
		{"wrong password", LoginRequest{Email: "a@x.com", Password: "nope"}, apperrors.KindInvalidCredentials, MsgInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			f.users.add("gone@x.com", "p1", false)

			s, err := f.manager.IssueOrReuseToken(context.Background(), tt.req)

			assert.Nil(t, s)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
			assert.Equal(t, tt.message, apperrors.MessageOf(err))
			assert.Zero(t, f.tokens.count())
		})
	}
}

func TestIssueOrReuseToken_StoreFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.tokens.createErr = errors.New("insert failed")

	_, err := f.manager.IssueOrReuseToken(context.Background(), LoginRequest{Email: "a@x.com", Password: "p1"})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Equal(t, MsgTokenStoreFailure, apperrors.MessageOf(err))
}

func TestIssueOrReuseToken_ConcurrentLoginsEachGetUsableToken(t *testing.T) {
	f := newSessionFixture(t)

	var wg sync.WaitGroup
	results := make([]*SessionInfo, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := f.manager.IssueOrReuseToken(context.Background(), LoginRequest{Email: "a@x.com", Password: "p1"})
			if err == nil {
				results[i] = s
			}
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		require.NotNil(t, s)
		v, err := f.manager.Validate(context.Background(), s.Token)
		require.NoError(t, err)
		assert.Equal(t, f.alice.ID, v.UserID)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	f := newSessionFixture(t)
	issued := f.login(t)

	got, err := f.manager.Validate(context.Background(), issued.Token)

	require.NoError(t, err)
	assert.Equal(t, issued, got)
}

func TestValidate_EmptyToken(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.Validate(context.Background(), uuid.Nil)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
	assert.Equal(t, MsgEmptyAuthorization, apperrors.MessageOf(err))
}

func TestValidate_UnknownToken(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.Validate(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	assert.Equal(t, MsgUnauthorized, apperrors.MessageOf(err))
}

func TestValidate_FlagAndTimestampGrid(t *testing.T) {
	tests := []struct {
		name     string
		flagged  bool
		advance  time.Duration
		admitted bool
	}{
		{"fresh", false, time.Hour, true},
		{"flag set before expiry", true, time.Hour, false},
		{"elapsed without flag", false, 9 * time.Hour, false},
		{"flag set and elapsed", true, 9 * time.Hour, false},
		{"exactly at expiry", false, 8 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			issued := f.login(t)
			if tt.flagged {
				tok := f.tokens.get(issued.Token)
				tok.HasExpired = true
				require.NoError(t, f.tokens.UpdateToken(context.Background(), tok))
			}
			f.clock.Advance(tt.advance)

			s, err := f.manager.Validate(context.Background(), issued.Token)

			if tt.admitted {
				require.NoError(t, err)
				assert.Equal(t, issued.Token, s.Token)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.KindTokenExpired, apperrors.KindOf(err))
			assert.Equal(t, MsgTokenExpired, apperrors.MessageOf(err))
			assert.True(t, f.tokens.get(issued.Token).HasExpired)
		})
	}
}

func TestValidate_ExpiryPersistFailureStillRejects(t *testing.T) {
	f := newSessionFixture(t)
	issued := f.login(t)
	f.tokens.updateErr = errors.New("write failed")
	f.clock.Advance(9 * time.Hour)

	_, err := f.manager.Validate(context.Background(), issued.Token)

	assert.Equal(t, apperrors.KindTokenExpired, apperrors.KindOf(err))
}

func TestLogout_ExpiresTokensAndCallerContext(t *testing.T) {
	f := newSessionFixture(t)
	issued := f.login(t)
	ctx, scope := f.callerContext(t, issued)

	info, err := f.manager.Logout(ctx)

	require.NoError(t, err)
	assert.Equal(t, issued.Token, info.Token)
	assert.True(t, info.TokenHasExpired)

	session := scope.Session()
	require.NotNil(t, session)
	assert.True(t, session.TokenHasExpired)
	assert.Equal(t, epoch.Add(-time.Hour), session.TokenExpiresAt)

	_, err = f.manager.Validate(context.Background(), issued.Token)
	assert.Equal(t, apperrors.KindTokenExpired, apperrors.KindOf(err))
}

func TestLogout_Idempotent(t *testing.T) {
	f := newSessionFixture(t)
	issued := f.login(t)
	ctx, _ := f.callerContext(t, issued)

	first, err := f.manager.Logout(ctx)
	require.NoError(t, err)
	second, err := f.manager.Logout(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, f.tokens.get(issued.Token).HasExpired)
}

func TestLogout_WithoutCallerContext(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.Logout(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
	assert.Equal(t, MsgNotAuthenticated, apperrors.MessageOf(err))
}

func TestLogout_ClearedScope(t *testing.T) {
	f := newSessionFixture(t)
	ctx, scope := f.callerContext(t, f.login(t))
	scope.Clear()

	_, err := f.manager.Logout(ctx)

	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestLogout_UnknownUser(t *testing.T) {
	f := newSessionFixture(t)
	ctx, _ := f.callerContext(t, &SessionInfo{Token: uuid.New(), UserID: uuid.New()})

	_, err := f.manager.Logout(ctx)

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestLogout_StoreFailure(t *testing.T) {
	f := newSessionFixture(t)
	issued := f.login(t)
	ctx, scope := f.callerContext(t, issued)
	f.tokens.expireErr = errors.New("update failed")

	_, err := f.manager.Logout(ctx)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Equal(t, MsgTokenStoreFailure, apperrors.MessageOf(err))
	assert.False(t, scope.Session().TokenHasExpired)
}
