package auth

import "context"

type contextKey string

const actorIDKey contextKey = "auth.actorID"

// WithActorID stores the authenticated user's id on the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey, actorID)
}

// ActorID returns the authenticated user's id, or an empty string for
// anonymous requests.
func ActorID(ctx context.Context) string {
	if id, ok := ctx.Value(actorIDKey).(string); ok {
		return id
	}
	return ""
}
