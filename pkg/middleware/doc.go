// Package middleware provides HTTP middleware for servers that render
// reactive documents: Prometheus request metrics and OpenTelemetry
// tracing.
package middleware
