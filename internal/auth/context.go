package auth

import "context"

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"` // Empty for board identities
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

type actorKey struct{}

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor placed by the auth middleware, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return a
	}
	return nil
}

// GetUserID is the empty string for anonymous requests.
func GetUserID(ctx context.Context) string {
	if a := ActorFromContext(ctx); a != nil {
		return a.UserID
	}
	return ""
}
