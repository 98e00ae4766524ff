package api

import (
	"net/http"

	"github.com/readify/readify/pkg/auth"
	"github.com/readify/readify/pkg/httputil"
)

// login handles POST /api/v1/users/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if _, ok := httputil.ParseOptionalJSON(w, r, &req); !ok {
		return
	}

	session, err := s.sessions.IssueOrReuseToken(r.Context(), req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, session)
}

// logout handles POST /api/v1/users/logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	info, err := s.sessions.Logout(r.Context())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, info)
}
