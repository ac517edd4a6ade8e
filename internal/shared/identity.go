package shared

import "context"

// Identity is the acting user resolved by the authentication layer.
// Every account-scoped operation receives it explicitly; the engine never
// reads identity from ambient state.
type Identity struct {
	UserID int64
	Email  string
	Role   string
}

// Roles understood by the authorization middleware.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

type identityKey struct{}

// ContextWithIdentity attaches the acting user to the request context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the acting user stored by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
