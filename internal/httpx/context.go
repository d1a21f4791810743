package httpx

import (
	"context"
	"net/http"

	"bookcatalog/internal/logger"
)

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(logger.RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the request ID, so that
// logger.For picks it up.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return logger.ContextWithID(ctx, requestID)
}
