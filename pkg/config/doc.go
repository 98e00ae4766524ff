// Package config loads Readify's configuration.
//
// # Sources
//
// Later sources win:
//
//  1. Built-in defaults (Default)
//  2. A YAML file named by READIFY_CONFIG_FILE
//  3. Environment variables, including those exported from the .env file
//     named by READIFY_ENV_FILE (default ".env"; missing is fine)
//
// # Variables
//
// Server:
//
//	READIFY_HOST="0.0.0.0"
//	READIFY_PORT="8080"
//	READIFY_HEALTH_PORT="9090"
//	READIFY_READ_TIMEOUT / READIFY_WRITE_TIMEOUT / READIFY_IDLE_TIMEOUT
//	READIFY_REQUEST_TIMEOUT="10s"
//	READIFY_SHUTDOWN_TIMEOUT="30s"
//
// Storage:
//
//	READIFY_POSTGRES_URL (required)
//	READIFY_POSTGRES_REPLICA_URLS="postgres://r1/...,postgres://r2/..."
//	READIFY_POSTGRES_MAX_CONNS / READIFY_POSTGRES_MIN_CONNS
//	READIFY_REDIS_URL (empty selects the in-process cache)
//	READIFY_REDIS_PASSWORD / READIFY_REDIS_DB / READIFY_REDIS_POOL_SIZE
//
// Sessions and caching:
//
//	READIFY_TOKEN_TTL="8h"
//	READIFY_TOKEN_SWEEP_SCHEDULE="@every 10m"
//	READIFY_BOOK_CACHE_TTL="24h"
//	READIFY_BOOK_CACHE_SIZE="1024"
//	READIFY_BOOK_CACHE_INVALIDATE_ON_WRITE="false"
//	READIFY_RATE_LIMIT_RPS="10"
//	READIFY_RATE_LIMIT_BURST="50"
//
// Observability:
//
//	READIFY_LOG_LEVEL="info"
//	READIFY_METRICS_ENABLED="true"
package config
