// Package observability provides structured logging and metrics for the
// chat edge.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - A context-aware Logger that tags entries with the request ID
//   - Prometheus counters and histograms for requests and provider attempts
//
// Logging and metrics are fire-and-forget: nothing here returns errors to
// the request path.
package observability
