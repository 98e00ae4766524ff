package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/auth"
	"github.com/readify/readify/pkg/books"
	"github.com/readify/readify/pkg/users"
)

// SessionService issues, validates and revokes header tokens
type SessionService interface {
	IssueOrReuseToken(ctx context.Context, req auth.LoginRequest) (*auth.SessionInfo, error)
	Validate(ctx context.Context, tokenID uuid.UUID) (*auth.SessionInfo, error)
	Logout(ctx context.Context) (*auth.LogoutInfo, error)
}

// UserService manages library members
type UserService interface {
	Create(ctx context.Context, req *users.CreateUserRequest) (uuid.UUID, error)
	List(ctx context.Context) ([]*users.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	Update(ctx context.Context, id uuid.UUID, req *users.UpdateUserRequest) (*users.User, error)
}

// BookService manages the catalog
type BookService interface {
	Create(ctx context.Context, req *books.CreateBookRequest) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*books.Book, error)
	GetAllForCaller(ctx context.Context, callerID uuid.UUID) ([]books.Book, error)
	Update(ctx context.Context, id uuid.UUID, req *books.UpdateBookRequest) (*books.Book, error)
	Delete(ctx context.Context, id uuid.UUID) (*books.Book, error)
}

// CreatedResponse answers a successful create
type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

var (
	_ SessionService = (*auth.SessionManager)(nil)
	_ UserService    = (*users.Service)(nil)
	_ BookService    = (*books.Service)(nil)
)
