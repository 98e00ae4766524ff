package books

import (
	"context"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// User-facing failure messages
const (
	MsgFieldsRequired = "All fields are required"
	MsgBookNotFound   = "Book not found!"
	MsgEmptyID        = "The id cannot be empty."
	MsgBookBorrowed   = "Book cannot be deleted as it is currently borrowed."
	MsgRequestNil     = "The request can't be null."
)

// Service implements the catalog operations
type Service struct {
	repo              Repository
	cache             *Cache
	invalidateOnWrite bool
	log               *logrus.Logger
}

// NewService creates a book service. When invalidateOnWrite is set every
// mutation drops the cached listings.
func NewService(repo Repository, cache *Cache, invalidateOnWrite bool, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		repo:              repo,
		cache:             cache,
		invalidateOnWrite: invalidateOnWrite,
		log:               log,
	}
}

// Create adds a book to the catalog. New books start on the shelf.
func (s *Service) Create(ctx context.Context, req *CreateBookRequest) (uuid.UUID, error) {
	if req == nil {
		return uuid.Nil, apperrors.InvalidInput(MsgRequestNil)
	}
	if req.Title == "" || req.Author == "" || req.Genre == "" || req.PublishDate.IsZero() {
		return uuid.Nil, apperrors.InvalidInput(MsgFieldsRequired)
	}

	id, err := s.repo.Create(ctx, &Book{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		PublishDate: req.PublishDate,
		Status:      true,
	})
	if err != nil {
		return uuid.Nil, apperrors.FromStore(err)
	}
	if id == uuid.Nil {
		return uuid.Nil, apperrors.New(apperrors.KindInternal, apperrors.MsgSomethingWentWrong)
	}

	s.afterWrite(ctx)
	return id, nil
}

// GetByID returns one book
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	if id == uuid.Nil {
		return nil, apperrors.InvalidInput(MsgEmptyID)
	}
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if book == nil {
		return nil, apperrors.NotFound(MsgBookNotFound)
	}
	return book, nil
}

// GetAllForCaller lists the catalog through the read-through cache
func (s *Service) GetAllForCaller(ctx context.Context, callerID uuid.UUID) ([]Book, error) {
	return s.cache.GetAllBooksForCaller(ctx, callerID)
}

// Update applies a partial update and returns the stored book
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateBookRequest) (*Book, error) {
	if req == nil {
		return nil, apperrors.InvalidInput(MsgRequestNil)
	}

	book, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && *req.Title != "" {
		book.Title = *req.Title
	}
	if req.Author != nil && *req.Author != "" {
		book.Author = *req.Author
	}
	if req.Genre != nil && *req.Genre != "" {
		book.Genre = *req.Genre
	}
	if req.PublishDate != nil && !req.PublishDate.IsZero() {
		book.PublishDate = *req.PublishDate
	}
	if req.Status != nil {
		book.Status = *req.Status
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, apperrors.FromStore(err)
	}

	s.afterWrite(ctx)
	return book, nil
}

// Delete removes a book that is currently on the shelf
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Book, error) {
	book, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !book.Status {
		return nil, apperrors.Conflict(MsgBookBorrowed)
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if !removed {
		return nil, apperrors.New(apperrors.KindInternal, apperrors.MsgSomethingWentWrong)
	}

	s.log.WithFields(logrus.Fields{"book_id": book.ID, "title": book.Title}).Info("deleted book")
	s.afterWrite(ctx)
	return book, nil
}

func (s *Service) afterWrite(ctx context.Context) {
	if !s.invalidateOnWrite || s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.WithError(err).Warn("failed to invalidate book listings")
	}
}
