package api

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/auth"
	"github.com/readify/readify/pkg/books"
	"github.com/readify/readify/pkg/users"
)

type memoryTokens struct {
	mu     sync.Mutex
	tokens []*auth.Token
}

func (s *memoryTokens) CreateToken(ctx context.Context, token *auth.Token) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *token
	cp.ID = uuid.New()
	s.tokens = append(s.tokens, &cp)
	return cp.ID, nil
}

func (s *memoryTokens) GetTokenByID(ctx context.Context, id uuid.UUID) (*auth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryTokens) GetTokenByUserID(ctx context.Context, userID uuid.UUID) (*auth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.tokens) - 1; i >= 0; i-- {
		if t := s.tokens[i]; t.UserID == userID && !t.HasExpired {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryTokens) UpdateToken(ctx context.Context, token *auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tokens {
		if t.ID == token.ID {
			cp := *token
			s.tokens[i] = &cp
		}
	}
	return nil
}

func (s *memoryTokens) ExpireAllTokensByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.tokens {
		if t.UserID == userID {
			t.HasExpired = true
			if t.ExpiresAt.After(now) {
				t.ExpiresAt = now
			}
			n++
		}
	}
	return n, nil
}

func (s *memoryTokens) FlagElapsedTokens(ctx context.Context, now time.Time) (int64, error) {
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

type memoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]users.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[uuid.UUID]users.User)}
}

func (r *memoryUsers) Create(ctx context.Context, user *users.User) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	cp.ID = uuid.New()
	r.users[cp.ID] = cp
	return cp.ID, nil
}

func (r *memoryUsers) Update(ctx context.Context, user *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memoryUsers) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryUsers) List(ctx context.Context) ([]*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*users.User, 0, len(r.users))
	for _, u := range r.users {
		cp := u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return list, nil
}

type memoryBooks struct {
	mu     sync.Mutex
	books  map[uuid.UUID]books.Book
	getAll int
}

func newMemoryBooks() *memoryBooks {
	return &memoryBooks{books: make(map[uuid.UUID]books.Book)}
}

func (r *memoryBooks) Create(ctx context.Context, book *books.Book) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *book
	cp.ID = uuid.New()
	r.books[cp.ID] = cp
	return cp.ID, nil
}

func (r *memoryBooks) GetByID(ctx context.Context, id uuid.UUID) (*books.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memoryBooks) GetAll(ctx context.Context) ([]books.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getAll++
	list := make([]books.Book, 0, len(r.books))
	for _, b := range r.books {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	return list, nil
}

func (r *memoryBooks) Update(ctx context.Context, book *books.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[book.ID] = *book
	return nil
}

func (r *memoryBooks) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return false, nil
	}
	delete(r.books, id)
	return true, nil
}

func (r *memoryBooks) reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getAll
}

// blockingSessions holds Validate until the request context is done
type blockingSessions struct {
	SessionService
	hadDeadline bool
}

func (s *blockingSessions) Validate(ctx context.Context, tokenID uuid.UUID) (*auth.SessionInfo, error) {
	_, s.hadDeadline = ctx.Deadline()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
		return nil, errors.New("validation was not canceled")
	}
}
