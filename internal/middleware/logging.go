// Package middleware contains HTTP middleware for both directions of traffic.
//
// WHAT IS MIDDLEWARE?
// Middleware is a function that wraps an HTTP handler to add cross-cutting behaviour
// (logging, request IDs, auth) without modifying the handler itself.
//
// SERVER SIDE wraps an http.Handler:
//
//	func MyMiddleware(next http.Handler) http.Handler
//
// CLIENT SIDE wraps an http.RoundTripper — the interface http.Client uses to
// actually send a request. Same decorator pattern, other end of the wire:
//
//	func MyTransport(next http.RoundTripper) http.RoundTripper
//
// The AlgoTest client mostly needs the client side (it talks to a remote
// execution service). The server side is used by the local stand-in service.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
// Go's http.ResponseWriter doesn't expose the status code after WriteHeader is called,
// so we wrap it to track it ourselves. This is a common Go pattern.
type responseWriter struct {
	http.ResponseWriter       // Embedding: this struct "inherits" all methods
	statusCode          int   // Our addition: track the status code
	written             int64 // Track bytes written
}

// WriteHeader captures the status code before delegating to the embedded ResponseWriter.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures bytes written and delegates to the embedded ResponseWriter.
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger returns an HTTP server middleware that logs each request using slog.
//
// Each log line includes: method, path, status code, duration, and bytes written.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // Default if WriteHeader is never called
			}

			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			)
		})
	}
}

// RoundTripperFunc adapts a function to http.RoundTripper, the way
// http.HandlerFunc adapts a function to http.Handler.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// LogTransport returns a client middleware that logs every outgoing request.
//
// Successful round trips log at Debug (the operator does not need a line per
// run), transport failures at Warn. The request ID set by RequestID is
// included so a log line can be matched with the collaborator's logs.
func LogTransport(logger *slog.Logger) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(r)
			if err != nil {
				logger.Warn("request failed",
					slog.String("method", r.Method),
					slog.String("url", r.URL.Redacted()),
					slog.String("request_id", r.Header.Get(RequestIDHeader)),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.Debug("request completed",
				slog.String("method", r.Method),
				slog.String("url", r.URL.Redacted()),
				slog.String("request_id", r.Header.Get(RequestIDHeader)),
				slog.Int("status", resp.StatusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", resp.ContentLength),
			)
			return resp, nil
		})
	}
}

// Chain wraps base with the given transports. The first one listed is the
// outermost, matching the order chi applies server middleware in.
func Chain(base http.RoundTripper, wrappers ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(wrappers) - 1; i >= 0; i-- {
		base = wrappers[i](base)
	}
	return base
}
