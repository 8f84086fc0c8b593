package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/backoffice/jwt"
)

// Verifier checks a bearer token. *jwt.Signer satisfies it.
type Verifier interface {
	Verify(token string) (jwt.Identity, error)
}

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by [RequireBearer].
func IdentityFromContext(ctx context.Context) (jwt.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(jwt.Identity)
	return id, ok
}

// RequireBearer rejects requests whose Authorization header does not carry a token
// accepted by v. onReject writes the rejection; nil means a plain 401.
func RequireBearer(v Verifier, onReject func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	if onReject == nil {
		onReject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				onReject(w, r)
				return
			}

			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				onReject(w, r)
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				onReject(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
