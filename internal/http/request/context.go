// internal/http/request/context.go
package request

import (
	"context"
	"net/http"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

type ContextKey int

const (
	ClientIPContextKey ContextKey = iota
	ActorContextKey
)

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey, actor)
}

// GetActor returns the authenticated caller, if any.
func GetActor(r *http.Request) (model.Actor, bool) {
	actor, ok := r.Context().Value(ActorContextKey).(model.Actor)
	return actor, ok
}

// ClientIP returns the client IP stored by the logging middleware, falling
// back to inspecting the request.
func ClientIP(r *http.Request) string {
	if v, ok := r.Context().Value(ClientIPContextKey).(string); ok && v != "" {
		return v
	}
	return FindClientIP(r)
}
