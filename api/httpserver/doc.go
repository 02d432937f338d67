// Package httpserver provides the reusable HTTP server the scoring node is
// built on.
//
// BaseServer wires a chi router with standard middleware, structured request
// logging, health endpoints and an optional prometheus metrics listener.
// Components expose their endpoints by implementing RouteRegistrar and
// passing themselves to New.
//
// # Health and Diagnostics
//
// Every server includes:
//
//   - /livez: liveness check
//   - /readyz: readiness check, honoring drain state
//   - /drain, /undrain: readiness control for load balancers
//   - optional pprof endpoints under /debug when enabled
//
// # Lifecycle
//
// RunInBackground starts the API and metrics listeners; Shutdown waits for
// in-flight requests up to the configured graceful shutdown duration.
package httpserver
