package auth

import (
	"context"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

type actorKey struct{}

func WithActor(ctx context.Context, actor entity.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(entity.Actor)
	return actor, ok && actor.ID != ""
}
