package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianbank/meridian/internal/shared"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	signed, err := issuer.Issue(shared.Identity{UserID: 42, Email: "alice@example.com", Role: shared.RoleCustomer})
	require.NoError(t, err)

	id, err := issuer.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, int64(42), id.UserID)
	require.Equal(t, "alice@example.com", id.Email)
	require.Equal(t, shared.RoleCustomer, id.Role)
}

func TestTokenExpires(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	issuer.WithNow(func() time.Time { return base })

	signed, err := issuer.Issue(shared.Identity{UserID: 1, Email: "a@example.com", Role: shared.RoleCustomer})
	require.NoError(t, err)

	issuer.WithNow(func() time.Time { return base.Add(2 * time.Hour) })
	_, err = issuer.Verify(signed)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	signed, err := NewTokenIssuer("secret-a", time.Hour).
		Issue(shared.Identity{UserID: 1, Email: "a@example.com", Role: shared.RoleCustomer})
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(signed)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokenGarbageRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	_, err := issuer.Verify("not.a.token")
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}
