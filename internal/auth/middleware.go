package auth

import (
	"net/http"
	"strings"

	"github.com/fintrack/fintrack/internal/platform/httpx"
	"github.com/fintrack/fintrack/internal/shared"
)

// Middleware guards routes that require an authenticated account.
type Middleware struct {
	Service *Service
	Tokens  *TokenIssuer
}

// RequireAccount validates the bearer token and attaches the resolved account
// identity to the request context.
func (m Middleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		subject, err := m.Tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		account, err := m.Service.CurrentAccount(r.Context(), subject)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{
			AccountID: account.ID,
			Email:     account.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
