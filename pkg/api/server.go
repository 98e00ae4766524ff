package api

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/readify/readify/pkg/httputil"
	"github.com/readify/readify/pkg/middleware"
	"github.com/readify/readify/pkg/observability"
	"github.com/sirupsen/logrus"
)

// PathPrefix is where every API route lives
const PathPrefix = "/api/v1"

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Dependencies wires the server. Nil limiters and nil metrics disable the
// corresponding middleware.
type Dependencies struct {
	Sessions SessionService
	Users    UserService
	Books    BookService

	// Limiter is applied per caller (user when admitted, IP otherwise)
	Limiter middleware.Limiter
	// LoginLimiter is applied per IP on the login route only
	LoginLimiter middleware.Limiter
	// TrustedProxies may name the client IP through forwarding headers
	TrustedProxies []*net.IPNet

	Metrics        *observability.Metrics
	Log            *logrus.Logger
	RequestTimeout time.Duration
}

// Server represents our API server
type Server struct {
	router  *mux.Router
	handler http.Handler
	log     *logrus.Logger

	sessions SessionService
	users    UserService
	books    BookService

	gate         *middleware.AuthGate
	limiter      *middleware.RateLimitMiddleware
	loginLimiter *middleware.RateLimitMiddleware
	metrics      *observability.Metrics
	timeout      time.Duration
}

// NewServer creates a new API server
func NewServer(deps Dependencies) *Server {
	log := deps.Log
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		router:   mux.NewRouter(),
		log:      log,
		sessions: deps.Sessions,
		users:    deps.Users,
		books:    deps.Books,
		metrics:  deps.Metrics,
		timeout:  deps.RequestTimeout,
	}

	var gateRecorder middleware.GateRecorder
	if deps.Metrics != nil {
		gateRecorder = deps.Metrics
	}
	s.gate = middleware.NewAuthGate(deps.Sessions, gateRecorder, log)

	if deps.Limiter != nil {
		s.limiter = middleware.NewRateLimitMiddleware(deps.Limiter, log).WithTrustedProxies(deps.TrustedProxies)
		if deps.Metrics != nil {
			s.limiter.WithRecorder("caller", deps.Metrics)
		}
	}
	if deps.LoginLimiter != nil {
		s.loginLimiter = middleware.NewRateLimitMiddleware(deps.LoginLimiter, log).WithTrustedProxies(deps.TrustedProxies)
		if deps.Metrics != nil {
			s.loginLimiter.WithRecorder("login", deps.Metrics)
		}
	}

	s.setupRoutes()

	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(log),
		httputil.RecoveryMiddleware(log),
	)(s.router)

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "route not found")
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	s.router.NotFoundHandler = notFound
	s.router.MethodNotAllowedHandler = methodNotAllowed

	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}

	// A subrouter resolves its own misses; without these a method mismatch
	// under the prefix surfaces as a 404.
	v1 := s.router.PathPrefix(PathPrefix).Subrouter()
	v1.NotFoundHandler = notFound
	v1.MethodNotAllowedHandler = methodNotAllowed

	// The deadline is installed first so token validation runs under it
	v1.Use(
		httputil.TimeoutContextMiddleware(s.timeout),
		s.gate.Handler,
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(maxBodyBytes),
	)
	if s.limiter != nil {
		v1.Use(s.limiter.Handler)
	}

	// Session routes
	var login http.Handler = http.HandlerFunc(s.login)
	if s.loginLimiter != nil {
		login = s.loginLimiter.Handler(login)
	}
	v1.Handle("/users/login", middleware.Public(login)).Methods("POST")
	v1.HandleFunc("/users/logout", s.logout).Methods("POST")

	// User routes
	v1.Handle("/users", middleware.Public(http.HandlerFunc(s.createUser))).Methods("POST")
	v1.HandleFunc("/users", s.listUsers).Methods("GET")
	v1.HandleFunc("/users/{id}", s.getUser).Methods("GET")
	v1.HandleFunc("/users/{id}", s.updateUser).Methods("PATCH")

	// Book routes
	v1.HandleFunc("/books", s.createBook).Methods("POST")
	v1.HandleFunc("/books", s.listBooks).Methods("GET")
	v1.HandleFunc("/books/{id}", s.getBook).Methods("GET")
	v1.HandleFunc("/books/{id}", s.updateBook).Methods("PATCH")
	v1.HandleFunc("/books/{id}", s.deleteBook).Methods("DELETE")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the route table
func (s *Server) Router() *mux.Router {
	return s.router
}
