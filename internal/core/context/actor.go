package context

import "context"

// Actor identifies the authenticated admin user behind a request.
type Actor struct {
	UserID  string
	Email   string
	IsAdmin bool
}

type actorContextKey struct{}

// WithActor adds the authenticated actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns the authenticated actor from context, or nil.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorContextKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetActorID returns the authenticated user ID or empty string.
func GetActorID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return ""
}
