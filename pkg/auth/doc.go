// Package auth implements Readify's header-token sessions.
//
// # Overview
//
// A login presents an email and password. When a usable token already exists
// for the user it is handed back unchanged; otherwise a new token is minted
// with an eight hour lifetime. The token's UUID is the bearer credential and
// travels in the Authorization header as its raw string form.
//
// # Token State
//
// A token carries two expiry representations that are checked independently:
//
//	usable := !token.HasExpired && now.Before(token.ExpiresAt)
//
// HasExpired is flipped by logout, by Validate when it notices the timestamp
// has passed, and by the Sweeper cron job. Tokens are never deleted.
//
// # Session Manager
//
//	manager := auth.NewSessionManager(tokenRepo, userService,
//		auth.WithLogger(logger),
//		auth.WithClock(clockwork.NewRealClock()),
//	)
//	session, err := manager.IssueOrReuseToken(ctx, auth.LoginRequest{Email: email, Password: password})
//	session, err = manager.Validate(ctx, tokenID)
//	info, err := manager.Logout(ctx) // ctx must carry the caller's Scope
//
// # Caller Context
//
// The validated session is stored in a *Scope attached to the request's
// context.Context by middleware.AuthGate. Downstream code reads it with
// SessionFromContext. The gate clears the scope when the request returns.
//
// # Passwords
//
// Passwords are stored as bcrypt hashes (HashPassword / ComparePassword).
//
// # Related Packages
//
//   - pkg/middleware: AuthGate admission control
//   - pkg/storage/postgres: TokenRepository implementing TokenStore
//   - pkg/users: UserDirectory implementation
package auth
