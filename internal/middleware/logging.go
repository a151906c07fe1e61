// Package middleware provides the HTTP middleware chain of the web server.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// TraceHeader carries the request trace ID in both directions.
const TraceHeader = "X-Trace-ID"

// LoggingMiddleware assigns a trace ID to every request and logs it once
// served.
func LoggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = logger.NewTraceID()
			}
			ctx := logger.WithTraceID(r.Context(), traceID)
			w.Header().Set(TraceHeader, traceID)

			state := &requestState{}
			r = r.WithContext(context.WithValue(ctx, requestStateKey{}, state))

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			if state.username != "" {
				ctx = logger.WithUserID(ctx, state.username)
			}
			log.LogRequest(ctx, r.Method, r.URL.RequestURI(), wrapped.statusCode, time.Since(start))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// requestState is shared by the middleware chain of one request so inner
// layers can report back to the access log.
type requestState struct {
	username string
}

type requestStateKey struct{}

func setLoggedUser(r *http.Request, username string) {
	if state, ok := r.Context().Value(requestStateKey{}).(*requestState); ok {
		state.username = username
	}
}
