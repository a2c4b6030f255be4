package httpapi

import (
	"net/http"

	"github.com/ionutdr23/GameMate/internal/auth"
	"github.com/ionutdr23/GameMate/internal/domain"
)

// requireAuth verifies the bearer token and stores the caller's claims in
// the request context.
func (a *api) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok || a.verifier == nil {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		claims, err := a.verifier.Verify(r.Context(), token)
		if err != nil {
			a.logger.Debug("auth: token rejected", "err", err)
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// requireModerator must run after requireAuth.
func (a *api) requireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}
		if a.isModerator == nil || !a.isModerator(claims.Subject) {
			WriteDomainError(w, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser returns the caller's identity key, writing 401 when missing.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return "", false
	}
	return claims.UserID(), true
}
