package shared

import "context"

type accountContextKey struct{}

// Identity is the authenticated account attached to a request context by the
// auth middleware. Services still receive the acting account id explicitly;
// this carrier only bridges the HTTP layer.
type Identity struct {
	AccountID int64
	Email     string
}

// ContextWithIdentity stores the authenticated identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, accountContextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(accountContextKey{}).(Identity)
	return id, ok
}
