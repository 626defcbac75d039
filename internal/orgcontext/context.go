// Package orgcontext carries the acting organization and user through a
// request context. Authentication itself happens upstream; by the time the
// core runs, identity is already resolved.
package orgcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type orgKey struct{}
type userKey struct{}

// WithOrgID returns a context scoped to the given organization.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	return context.WithValue(ctx, orgKey{}, orgID)
}

// OrgIDFromContext extracts the acting organization, if any.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(orgKey{}).(snowflake.ID)
	return id, ok
}

// WithUserID records the acting warehouse user for audit entries.
func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserIDFromContext extracts the acting user, if any.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(userKey{}).(snowflake.ID)
	return id, ok
}
