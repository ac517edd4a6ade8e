package auth

import (
	"net/http"
	"strings"

	"github.com/meridianbank/meridian/internal/platform/httpx"
	"github.com/meridianbank/meridian/internal/shared"
)

// Middleware resolves the acting user from the Authorization header and
// stores it in the request context. Downstream services always receive the
// identity as an explicit argument.
func Middleware(tokens *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			id, err := tokens.Verify(raw)
			if err != nil {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin rejects non-admin identities. Mounted inside Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		if !id.IsAdmin() {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
