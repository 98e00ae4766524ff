// Package postgres implements Readify's repositories on PostgreSQL.
//
// ConnectionManager owns a primary handle and optional read replicas
// (round-robin, falling back to the primary). Listing queries read from a
// replica; everything that must observe a write made moments earlier
// (tokens, user lookups during login) reads from the primary.
//
//	cm, err := postgres.NewConnectionManager(postgres.ConnectionConfig{PrimaryURL: url}, logger)
//	if err := postgres.Migrate(ctx, cm); err != nil { ... }
//	tokens := postgres.NewTokenRepository(cm)
//
// Absent rows are reported as (nil, nil). Driver failures become
// apperrors values; unique violations on users.email become Conflict.
package postgres
