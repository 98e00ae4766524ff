package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a registered library member
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	BirthDate    time.Time `json:"birth_date"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	IsActive     bool      `json:"is_active"`
}

// CreateUserRequest is the payload for registering a user
type CreateUserRequest struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	BirthDate time.Time `json:"birth_date"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched
type UpdateUserRequest struct {
	Name      *string    `json:"name,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Password  *string    `json:"password,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// Repository persists users. Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, user *User) (uuid.UUID, error)
	Update(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
