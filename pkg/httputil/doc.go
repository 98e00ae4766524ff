// Package httputil provides HTTP helpers shared by the Readify handlers.
//
// # Responses
//
//	httputil.WriteSuccess(w, session)
//	httputil.WriteCreated(w, book)
//	httputil.WriteAppError(w, err)
//
// WriteAppError answers a service failure according to its apperrors.Kind:
//
//	InvalidInput, InvalidCredentials, NotFound, Conflict  -> 400
//	Unauthorized, TokenExpired, Unauthenticated           -> 401
//	Canceled                                              -> 503
//	anything else                                         -> 500
//
// The body is {"error": message, "kind": kind}. Wrapped causes are never
// written to the client.
//
// # Requests
//
//	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
//	present, ok := httputil.ParseOptionalJSON(w, r, &req)
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(log),
//		httputil.RecoveryMiddleware(log),
//		httputil.TimeoutContextMiddleware(30*time.Second),
//	)(router)
//
// RequestIDMiddleware honours an incoming X-Request-ID and otherwise assigns
// a UUID; the id is stored under contextkeys.RequestIDKey.
package httputil
