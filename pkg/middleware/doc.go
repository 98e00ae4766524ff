// Package middleware provides HTTP admission control for the Readify API.
//
// # Auth Gate
//
// AuthGate reads the raw token UUID from the Authorization header, validates
// it through the session manager and installs the caller context on the
// request's context for the handler. The context is cleared when the gate
// returns, including when the handler panics.
//
//	gate := middleware.NewAuthGate(sessionManager, metrics, logger)
//	router.Use(gate.Handler)
//	router.Handle("/api/v1/users/login", middleware.Public(loginHandler))
//
// Every rejection answers 401 with {"error":"Unauthorized"}; the reason is
// only logged at debug level.
//
// # Rate Limiting
//
// RateLimitMiddleware keys callers by user when authenticated and by client
// IP otherwise. The client IP is the peer address; X-Forwarded-For and
// X-Real-IP count only when the peer is listed through WithTrustedProxies.
// RateLimiter keeps an in-process token bucket per key;
// DistributedRateLimiter shares a one-minute window through Redis and fails
// open when Redis is unreachable.
package middleware
