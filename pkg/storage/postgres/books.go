package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/books"
)

// BookRepository implements books.Repository
type BookRepository struct {
	cm *ConnectionManager
}

var _ books.Repository = (*BookRepository)(nil)

// NewBookRepository creates a book repository
func NewBookRepository(cm *ConnectionManager) *BookRepository {
	return &BookRepository{cm: cm}
}

const bookColumns = `id, title, author, genre, publish_date, status`

func scanBook(row interface{ Scan(...interface{}) error }) (*books.Book, error) {
	var b books.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.PublishDate, &b.Status); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts the book under a fresh id
func (r *BookRepository) Create(ctx context.Context, b *books.Book) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.cm.Primary().ExecContext(ctx,
		`INSERT INTO books (`+bookColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, b.Title, b.Author, b.Genre, b.PublishDate, b.Status)
	if err != nil {
		return uuid.Nil, storeError("insert book", err)
	}
	return id, nil
}

// GetByID returns the book or nil
func (r *BookRepository) GetByID(ctx context.Context, id uuid.UUID) (*books.Book, error) {
	row := r.cm.Primary().QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get book", err)
	}
	return b, nil
}

// GetAll returns the whole catalog ordered by title
func (r *BookRepository) GetAll(ctx context.Context) ([]books.Book, error) {
	rows, err := r.cm.Replica().QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY title`)
	if err != nil {
		return nil, storeError("list books", err)
	}
	defer rows.Close()

	var out []books.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, storeError("scan book", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list books", err)
	}
	return out, nil
}

// Update overwrites the book's fields
func (r *BookRepository) Update(ctx context.Context, b *books.Book) error {
	_, err := r.cm.Primary().ExecContext(ctx,
		`UPDATE books
		 SET title = $2, author = $3, genre = $4, publish_date = $5, status = $6
		 WHERE id = $1`,
		b.ID, b.Title, b.Author, b.Genre, b.PublishDate, b.Status)
	if err != nil {
		return storeError("update book", err)
	}
	return nil
}

// Delete removes the book and reports whether a row was deleted
func (r *BookRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.cm.Primary().ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, storeError("delete book", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeError("delete book", err)
	}
	return n > 0, nil
}
