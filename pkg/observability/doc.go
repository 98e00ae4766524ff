// Package observability provides Prometheus metrics, health probes and
// graceful shutdown for the Readify server.
//
// # Metrics
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//
// Metrics implements the recorder interfaces of the packages it observes:
//
//	middleware.GateRecorder   readify_auth_gate_total{outcome}
//	books.CacheRecorder       readify_cache_requests_total{cache,result}
//	middleware.LimitRecorder  readify_rate_limited_total{limiter}
//	auth.SweepRecorder        readify_tokens_flagged_total
//
// HTTP series are labelled with the matched mux route template so that ids in
// the path do not create new series.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(connManager, redisStore)
//	observability.RegisterHealthRoutes(mux, checker)
//
// /readyz answers 503 when the database is down. A down Redis only degrades
// the status because the book cache falls back to the database.
//
// # Shutdown
//
//	sm := observability.NewShutdownManager(log, 30*time.Second, apiServer, healthServer)
//	sm.RegisterShutdownFunc("sweeper", sweeper.Stop)
//	err := sm.Shutdown()
package observability
