package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/apperrors"
)

type memoryTokenStore struct {
	mu        sync.Mutex
	tokens    map[uuid.UUID]*Token
	order     []uuid.UUID
	createErr error
	updateErr error
	expireErr error
	updates   int
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[uuid.UUID]*Token)}
}

func (s *memoryTokenStore) CreateToken(ctx context.Context, token *Token) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return uuid.Nil, s.createErr
	}
	cp := *token
	cp.ID = uuid.New()
	s.tokens[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	return cp.ID, nil
}

func (s *memoryTokenStore) GetTokenByID(ctx context.Context, id uuid.UUID) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memoryTokenStore) GetTokenByUserID(ctx context.Context, userID uuid.UUID) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		t := s.tokens[s.order[i]]
		if t.UserID == userID && !t.HasExpired {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryTokenStore) UpdateToken(ctx context.Context, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.tokens[token.ID]; !ok {
		return errors.New("token not found")
	}
	cp := *token
	s.tokens[token.ID] = &cp
	return nil
}

func (s *memoryTokenStore) ExpireAllTokensByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expireErr != nil {
		return 0, s.expireErr
	}
	var n int64
	for _, t := range s.tokens {
		if t.UserID != userID {
			continue
		}
		t.HasExpired = true
		if t.ExpiresAt.After(now) {
			t.ExpiresAt = now
		}
		n++
	}
	return n, nil
}

func (s *memoryTokenStore) FlagElapsedTokens(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.tokens {
		if !t.HasExpired && !t.ExpiresAt.After(now) {
			t.HasExpired = true
			n++
		}
	}
	return n, nil
}

func (s *memoryTokenStore) get(id uuid.UUID) *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.tokens[id]
	return &cp
}

func (s *memoryTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

type memoryDirectory struct {
	byEmail map[string]*Identity
	hashes  map[uuid.UUID]string
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{
		byEmail: make(map[string]*Identity),
		hashes:  make(map[uuid.UUID]string),
	}
}

func (d *memoryDirectory) add(email, password string, active bool) *Identity {
	hash, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	id := &Identity{ID: uuid.New(), Email: email, IsActive: active}
	d.byEmail[email] = id
	d.hashes[id.ID] = hash
	return id
}

func (d *memoryDirectory) FindIdentityByEmail(ctx context.Context, email string) (*Identity, error) {
	id, ok := d.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound(MsgUserNotFound)
	}
	return id, nil
}

func (d *memoryDirectory) FindIdentityByID(ctx context.Context, userID uuid.UUID) (*Identity, error) {
	for _, id := range d.byEmail {
		if id.ID == userID {
			return id, nil
		}
	}
	return nil, apperrors.NotFound(MsgUserNotFound)
}

func (d *memoryDirectory) GetPasswordHash(ctx context.Context, userID uuid.UUID) (string, error) {
	hash, ok := d.hashes[userID]
	if !ok {
		return "", apperrors.NotFound(MsgUserNotFound)
	}
	return hash, nil
}
