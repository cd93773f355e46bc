// Package middleware carries the cross-cutting HTTP concerns shared by the
// webhook intake and operational endpoints.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const correlationHeader = "X-Correlation-ID"

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// CorrelationID tags every request with an ID that follows it through the
// logs. The item-management platform does not send one with webhook
// deliveries, so in practice the ID is minted here; a caller-supplied
// header is honored for operator requests relayed through other tooling.
// The ID is echoed in the response so the caller can quote it.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationHeader, id)
		ctx := context.WithValue(r.Context(), correlationIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID returns the request's correlation ID, or an empty string
// when the middleware is not in the chain.
func GetCorrelationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationIDKey).(string)
	return v
}
