// Package observability provides structured logging and metrics for the
// API gateway.
//
// This package implements:
//   - zap logger construction from configuration
//   - Prometheus counters for authentication gate decisions
package observability
