package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/books"
	"github.com/readify/readify/pkg/httputil"
	"github.com/readify/readify/pkg/middleware"
)

// createBook handles POST /api/v1/books
func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	var body books.CreateBookRequest
	present, ok := httputil.ParseOptionalJSON(w, r, &body)
	if !ok {
		return
	}

	var req *books.CreateBookRequest
	if present {
		req = &body
	}

	id, err := s.books.Create(r.Context(), req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteCreated(w, CreatedResponse{ID: id})
}

// listBooks handles GET /api/v1/books. The listing is served through the
// per-caller cache.
func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	callerID := uuid.Nil
	if session := middleware.GetSession(r); session != nil {
		callerID = session.UserID
	}

	list, err := s.books.GetAllForCaller(r.Context(), callerID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, list)
}

// getBook handles GET /api/v1/books/{id}
func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	book, err := s.books.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, book)
}

// updateBook handles PATCH /api/v1/books/{id}
func (s *Server) updateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var body books.UpdateBookRequest
	present, ok := httputil.ParseOptionalJSON(w, r, &body)
	if !ok {
		return
	}

	var req *books.UpdateBookRequest
	if present {
		req = &body
	}

	book, err := s.books.Update(r.Context(), id, req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, book)
}

// deleteBook handles DELETE /api/v1/books/{id}
func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	book, err := s.books.Delete(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, book)
}
