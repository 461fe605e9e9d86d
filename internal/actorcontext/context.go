// Package actorcontext carries the acting user through request contexts.
package actorcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ActorContextKey is the request context key for the acting user ID.
type ActorContextKey struct{}

// WithActorID stores the acting user ID in the context.
func WithActorID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, userID)
}

// ActorIDFromContext returns the acting user ID from context, if set.
func ActorIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(ActorContextKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, parsed != 0
		}
	}

	return 0, false
}
