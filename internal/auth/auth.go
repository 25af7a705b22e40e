// Package auth extracts the owner identity set by the authenticating front.
// The service itself never handles credentials or sessions; it trusts the
// X-Owner-ID header placed by the proxy in front of it.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

type contextKey struct{}

var ownerKey = contextKey{}

// OwnerID returns the owner identity attached to the request context.
// The boolean is false when the request did not pass through Middleware.
func OwnerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ownerKey).(int64)
	return id, ok
}

// WithOwnerID attaches an owner identity to the context. Exposed for tests.
func WithOwnerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ownerKey, id)
}

// Middleware rejects requests without a valid X-Owner-ID header and attaches
// the parsed identity to the request context.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-Owner-ID")
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				log.Warn().
					Str("path", r.URL.Path).
					Str("owner_header", raw).
					Msg("Rejected request without valid owner identity")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid X-Owner-ID header"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), id)))
		})
	}
}
