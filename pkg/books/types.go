package books

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Book is a catalog entry. Status is true while the book is on the shelf and
// false while it is lent out.
type Book struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	PublishDate time.Time `json:"publish_date"`
	Status      bool      `json:"status"`
}

// CreateBookRequest is the payload for adding a book
type CreateBookRequest struct {
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	PublishDate time.Time `json:"publish_date"`
}

// UpdateBookRequest is a partial update; nil or empty fields are left untouched
type UpdateBookRequest struct {
	Title       *string    `json:"title,omitempty"`
	Author      *string    `json:"author,omitempty"`
	Genre       *string    `json:"genre,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	Status      *bool      `json:"status,omitempty"`
}

// Repository persists books. Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, book *Book) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, book *Book) error
	// Delete reports whether a row was removed
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CacheRecorder observes cache lookups
type CacheRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}
