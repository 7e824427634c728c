package querybase

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// GetRequestID returns the request id from context if present.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// RequestLogger adds a request id to the context and logs basic request info.
// An incoming X-Request-Id header is reused. actionParam names the query
// parameter that selects the action; it defaults to "action".
func RequestLogger(logger *slog.Logger, actionParam string) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if actionParam == "" {
		actionParam = "action"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-Id")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)

			ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			ww.Header().Set("X-Request-Id", reqID)
			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Info("http_request",
				slog.String("id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("action", r.URL.Query().Get(actionParam)),
				slog.Int("status", ww.status),
				slog.String("remote", r.RemoteAddr),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
