package request

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const actorContextKey contextKey = "relay_actor"

// ClientIP extracts the client IP from the request, respecting
// X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithActor returns a context with the authenticated relay actor attached.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the relay actor from the request context, or ""
// if the request was not authenticated.
func ActorFromContext(r *http.Request) string {
	actor, _ := r.Context().Value(actorContextKey).(string)
	return actor
}
