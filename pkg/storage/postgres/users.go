package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/apperrors"
	"github.com/readify/readify/pkg/users"
)

// UserRepository implements users.Repository
type UserRepository struct {
	cm *ConnectionManager
}

var _ users.Repository = (*UserRepository)(nil)

// NewUserRepository creates a user repository
func NewUserRepository(cm *ConnectionManager) *UserRepository {
	return &UserRepository{cm: cm}
}

const userColumns = `id, name, email, birth_date, password_hash, created_at, is_active`

func scanUser(row interface{ Scan(...interface{}) error }) (*users.User, error) {
	var u users.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.BirthDate, &u.PasswordHash, &u.CreatedAt, &u.IsActive)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the user under a fresh id
func (r *UserRepository) Create(ctx context.Context, u *users.User) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.cm.Primary().ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, u.Name, u.Email, u.BirthDate, u.PasswordHash, u.CreatedAt, u.IsActive)
	if isUniqueViolation(err) {
		return uuid.Nil, apperrors.Conflict(users.MsgUserAlreadyExists)
	}
	if err != nil {
		return uuid.Nil, storeError("insert user", err)
	}
	return id, nil
}

// Update overwrites the mutable fields of the user
func (r *UserRepository) Update(ctx context.Context, u *users.User) error {
	_, err := r.cm.Primary().ExecContext(ctx,
		`UPDATE users
		 SET name = $2, email = $3, birth_date = $4, password_hash = $5, is_active = $6
		 WHERE id = $1`,
		u.ID, u.Name, u.Email, u.BirthDate, u.PasswordHash, u.IsActive)
	if isUniqueViolation(err) {
		return apperrors.Conflict(users.MsgUserAlreadyExists)
	}
	if err != nil {
		return storeError("update user", err)
	}
	return nil
}

// GetByID returns the user or nil. Reads hit the primary since logins
// resolve users right after registration.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	row := r.cm.Primary().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get user", err)
	}
	return u, nil
}

// GetByEmail returns the user or nil
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	row := r.cm.Primary().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get user by email", err)
	}
	return u, nil
}

// List returns every user ordered by creation
func (r *UserRepository) List(ctx context.Context) ([]*users.User, error) {
	rows, err := r.cm.Replica().QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, storeError("list users", err)
	}
	defer rows.Close()

	var out []*users.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeError("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list users", err)
	}
	return out, nil
}
