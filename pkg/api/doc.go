// Package api exposes the Readify REST API.
//
// # Routes
//
//	POST   /api/v1/users/login    public, per-IP rate limited
//	POST   /api/v1/users/logout
//	POST   /api/v1/users          public registration
//	GET    /api/v1/users
//	GET    /api/v1/users/{id}
//	PATCH  /api/v1/users/{id}
//	POST   /api/v1/books
//	GET    /api/v1/books          per-caller cached listing
//	GET    /api/v1/books/{id}
//	PATCH  /api/v1/books/{id}
//	DELETE /api/v1/books/{id}
//
// Every route not marked public passes middleware.AuthGate, which expects
// the raw token UUID in the Authorization header.
//
// # Middleware Order
//
//	request id -> access log -> panic recovery -> metrics -> auth gate ->
//	request timeout -> content type -> body limit -> caller rate limit -> handler
//
// # Wiring
//
//	server := api.NewServer(api.Dependencies{
//		Sessions: sessionManager,
//		Users:    userService,
//		Books:    bookService,
//		Metrics:  metrics,
//		Log:      log,
//	})
//	http.ListenAndServe(":8080", server)
package api
