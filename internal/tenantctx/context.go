// Package tenantctx carries the authenticated actor through the request
// context.
package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Actor is the caller a request runs as. TenantID is zero for platform
// operators acting outside any tenant.
type Actor struct {
	AccountID snowflake.ID
	TenantID  snowflake.ID
	Role      string
}

type actorKey struct{}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor from context, if set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// TenantIDFromContext returns the actor's tenant ID, if an actor with a
// tenant is present.
func TenantIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.TenantID == 0 {
		return 0, false
	}
	return actor.TenantID, true
}

// ParseID parses a snowflake ID from a header or path value.
func ParseID(raw string) (snowflake.ID, bool) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return parsed, true
}
