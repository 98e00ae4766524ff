package books

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu       sync.Mutex
	books    map[uuid.UUID]*Book
	getAll   int
	err      error
	noDelete bool
}

func newMemoryRepo(seed ...Book) *memoryRepo {
	r := &memoryRepo{books: make(map[uuid.UUID]*Book)}
	for i := range seed {
		b := seed[i]
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		r.books[b.ID] = &b
	}
	return r
}

func (r *memoryRepo) Create(ctx context.Context, b *Book) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return uuid.Nil, r.err
	}
	cp := *b
	cp.ID = uuid.New()
	r.books[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if b, ok := r.books[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryRepo) GetAll(ctx context.Context) ([]Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getAll++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, *b)
	}
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if r.noDelete {
		return false, nil
	}
	_, ok := r.books[id]
	delete(r.books, id)
	return ok, nil
}

func (r *memoryRepo) loads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getAll
}

type countingRecorder struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (c *countingRecorder) RecordCacheHit(string) {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *countingRecorder) RecordCacheMiss(string) {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
