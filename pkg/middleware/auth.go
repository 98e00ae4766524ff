package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/readify/readify/pkg/apperrors"
	"github.com/readify/readify/pkg/auth"
	"github.com/sirupsen/logrus"
)

// Gate outcomes reported to the recorder
const (
	OutcomePublic    = "public"
	OutcomeAdmitted  = "admitted"
	OutcomeMissing   = "missing_token"
	OutcomeMalformed = "malformed_token"
	OutcomeRejected  = "rejected"
)

// unauthorizedBody is sent for every rejection so callers cannot tell a
// missing token from an expired one
const unauthorizedBody = `{"error":"Unauthorized"}`

// TokenValidator resolves a bearer token into a session
type TokenValidator interface {
	Validate(ctx context.Context, tokenID uuid.UUID) (*auth.SessionInfo, error)
}

// GateRecorder observes gate decisions
type GateRecorder interface {
	RecordAuthGate(outcome string)
}

// AuthGate admits requests that carry a valid token in the Authorization
// header and installs the caller context for the duration of the request
type AuthGate struct {
	validator TokenValidator
	recorder  GateRecorder
	log       *logrus.Logger
}

// NewAuthGate creates an auth gate. A nil recorder disables metrics.
func NewAuthGate(validator TokenValidator, recorder GateRecorder, log *logrus.Logger) *AuthGate {
	if log == nil {
		log = logrus.New()
	}
	return &AuthGate{validator: validator, recorder: recorder, log: log}
}

// publicHandler marks a route the gate lets through without a token
type publicHandler struct {
	http.Handler
}

// Public marks h as reachable without authentication
func Public(h http.Handler) http.Handler {
	return publicHandler{h}
}

func isPublic(r *http.Request, next http.Handler) bool {
	if _, ok := next.(publicHandler); ok {
		return true
	}
	if route := mux.CurrentRoute(r); route != nil {
		_, ok := route.GetHandler().(publicHandler)
		return ok
	}
	return false
}

// Handler wraps an HTTP handler with the gate
func (g *AuthGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r, next) {
			g.record(OutcomePublic)
			next.ServeHTTP(w, r)
			return
		}

		// The header carries the raw token UUID, no scheme prefix
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			g.reject(w, r, OutcomeMissing, "missing authorization header")
			return
		}

		tokenID, err := uuid.Parse(header)
		if err != nil || tokenID == uuid.Nil {
			g.reject(w, r, OutcomeMalformed, "authorization header is not a token")
			return
		}

		session, err := g.validator.Validate(r.Context(), tokenID)
		if err != nil {
			g.reject(w, r, OutcomeRejected, apperrors.MessageOf(err))
			return
		}

		scope := auth.NewScope(session)
		defer scope.Clear()

		g.record(OutcomeAdmitted)
		next.ServeHTTP(w, r.WithContext(auth.WithScope(r.Context(), scope)))
	})
}

func (g *AuthGate) reject(w http.ResponseWriter, r *http.Request, outcome, reason string) {
	g.record(outcome)
	g.log.WithFields(logrus.Fields{
		"path":    r.URL.Path,
		"outcome": outcome,
		"reason":  reason,
	}).Debug("request rejected by auth gate")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(unauthorizedBody))
}

func (g *AuthGate) record(outcome string) {
	if g.recorder != nil {
		g.recorder.RecordAuthGate(outcome)
	}
}

// GetSession extracts the caller context from the request
func GetSession(r *http.Request) *auth.SessionInfo {
	return auth.SessionFromContext(r.Context())
}
