package dashboard

import "context"

// ActivityContext names who performed a layout change. ActorID differs from
// UserID when an operator or job acts on a user's behalf.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
	Role     string
}

type activityKey struct{}

func ContextWithActivity(ctx context.Context, actor ActivityContext) context.Context {
	return context.WithValue(ctx, activityKey{}, actor)
}

// ContextWithViewer attributes later changes to the viewer acting as themselves.
func ContextWithViewer(ctx context.Context, viewer ViewerContext) context.Context {
	return ContextWithActivity(ctx, ActivityContext{
		ActorID: viewer.UserID,
		UserID:  viewer.UserID,
		Role:    viewer.Role().String(),
	})
}

// ActivityFromContext returns the zero ActivityContext when ctx carries none.
func ActivityFromContext(ctx context.Context) ActivityContext {
	actor, _ := ctx.Value(activityKey{}).(ActivityContext)
	return actor
}
