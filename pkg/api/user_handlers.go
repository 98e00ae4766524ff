package api

import (
	"net/http"

	"github.com/readify/readify/pkg/httputil"
	"github.com/readify/readify/pkg/users"
)

// createUser handles POST /api/v1/users
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var body users.CreateUserRequest
	present, ok := httputil.ParseOptionalJSON(w, r, &body)
	if !ok {
		return
	}

	var req *users.CreateUserRequest
	if present {
		req = &body
	}

	id, err := s.users.Create(r.Context(), req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteCreated(w, CreatedResponse{ID: id})
}

// listUsers handles GET /api/v1/users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, list)
}

// getUser handles GET /api/v1/users/{id}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}

// updateUser handles PATCH /api/v1/users/{id}
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var body users.UpdateUserRequest
	present, ok := httputil.ParseOptionalJSON(w, r, &body)
	if !ok {
		return
	}

	var req *users.UpdateUserRequest
	if present {
		req = &body
	}

	user, err := s.users.Update(r.Context(), id, req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}
