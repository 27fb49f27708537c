// Package httpserver serves the reactorkv admin HTTP endpoint.
//
// Routes:
//
//	GET /healthz   liveness
//	GET /readyz    readiness (the Redis listener is bound)
//	GET /metrics   Prometheus exposition
//	GET /version   build information
//
// Every route runs behind the RequestID, Recover and AccessLog middleware.
package httpserver
