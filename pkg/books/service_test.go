package books

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/apperrors"
	"github.com/readify/readify/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repo *memoryRepo, invalidate bool) (*Service, *cache.MemoryStore) {
	store := cache.NewMemoryStore(16, time.Hour)
	c := NewCache(store, repo, time.Hour, nil, nil)
	return NewService(repo, c, invalidate, nil), store
}

func TestService_Create(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, false)

	id, err := svc.Create(context.Background(), &CreateBookRequest{
		Title:       dune.Title,
		Author:      dune.Author,
		Genre:       dune.Genre,
		PublishDate: dune.PublishDate,
	})
	require.NoError(t, err)

	book, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.True(t, book.Status, "new books start on the shelf")
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo(), false)

	tests := []struct {
		name string
		req  *CreateBookRequest
		msg  string
	}{
		{"nil request", nil, MsgRequestNil},
		{"missing title", &CreateBookRequest{Author: "a", Genre: "g", PublishDate: time.Now()}, MsgFieldsRequired},
		{"missing author", &CreateBookRequest{Title: "t", Genre: "g", PublishDate: time.Now()}, MsgFieldsRequired},
		{"missing genre", &CreateBookRequest{Title: "t", Author: "a", PublishDate: time.Now()}, MsgFieldsRequired},
		{"zero publish date", &CreateBookRequest{Title: "t", Author: "a", Genre: "g"}, MsgFieldsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
			assert.Equal(t, tt.msg, apperrors.MessageOf(err))
		})
	}
}

func TestService_GetByID(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo(), false)

	_, err := svc.GetByID(context.Background(), uuid.Nil)
	assert.Equal(t, MsgEmptyID, apperrors.MessageOf(err))

	_, err = svc.GetByID(context.Background(), uuid.New())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, MsgBookNotFound, apperrors.MessageOf(err))
}

func TestService_Update(t *testing.T) {
	book := dune
	book.ID = uuid.New()
	repo := newMemoryRepo(book)
	svc, _ := newTestService(repo, false)

	lent := false
	genre := "Classic"
	empty := ""
	updated, err := svc.Update(context.Background(), book.ID, &UpdateBookRequest{
		Title:  &empty,
		Genre:  &genre,
		Status: &lent,
	})
	require.NoError(t, err)

	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "Classic", updated.Genre)
	assert.False(t, updated.Status)

	_, err = svc.Update(context.Background(), book.ID, nil)
	assert.Equal(t, MsgRequestNil, apperrors.MessageOf(err))
}

func TestService_Delete(t *testing.T) {
	shelved := dune
	shelved.ID = uuid.New()
	lent := dune
	lent.ID = uuid.New()
	lent.Status = false
	repo := newMemoryRepo(shelved, lent)
	svc, _ := newTestService(repo, false)

	deleted, err := svc.Delete(context.Background(), shelved.ID)
	require.NoError(t, err)
	assert.Equal(t, shelved.ID, deleted.ID)

	_, err = svc.Delete(context.Background(), lent.ID)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, MsgBookBorrowed, apperrors.MessageOf(err))

	_, err = svc.Delete(context.Background(), uuid.Nil)
	assert.Equal(t, MsgEmptyID, apperrors.MessageOf(err))

	_, err = svc.Delete(context.Background(), uuid.New())
	assert.Equal(t, MsgBookNotFound, apperrors.MessageOf(err))
}

func TestService_DeleteNothingRemoved(t *testing.T) {
	book := dune
	book.ID = uuid.New()
	repo := newMemoryRepo(book)
	repo.noDelete = true
	svc, _ := newTestService(repo, false)

	_, err := svc.Delete(context.Background(), book.ID)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Equal(t, apperrors.MsgSomethingWentWrong, apperrors.MessageOf(err))
}

func TestService_StoreFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.err = errors.New("db down")
	svc, _ := newTestService(repo, false)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestService_InvalidateOnWrite(t *testing.T) {
	for _, invalidate := range []bool{false, true} {
		repo := newMemoryRepo(dune)
		svc, store := newTestService(repo, invalidate)

		_, err := svc.GetAllForCaller(context.Background(), uuid.New())
		require.NoError(t, err)
		require.Equal(t, 1, store.Len())

		_, err = svc.Create(context.Background(), &CreateBookRequest{Title: "t", Author: "a", Genre: "g", PublishDate: time.Now()})
		require.NoError(t, err)

		if invalidate {
			assert.Zero(t, store.Len())
		} else {
			assert.Equal(t, 1, store.Len())
		}
	}
}
