package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxUserName contextKey = "user_name"
	ctxRole     contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func UserNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserName).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithActor seeds the context with the authenticated identity, the way the
// auth middleware does. Exposed for handler tests.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.ID.String())
	ctx = context.WithValue(ctx, ctxUserName, actor.Name)
	return context.WithValue(ctx, ctxRole, string(actor.Role))
}

// ActorFromContext rebuilds the authenticated actor from the values the
// auth middleware stored. The zero actor means the request is anonymous.
func ActorFromContext(ctx context.Context) types.Actor {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return types.Actor{}
	}
	return types.Actor{
		ID:   id,
		Name: UserNameFromContext(ctx),
		Role: enums.Role(RoleFromContext(ctx)),
	}
}
