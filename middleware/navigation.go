package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrEthical07/backoffice/guard"
	"github.com/MrEthical07/backoffice/permission"
)

type actionContextKey struct{}

// ActionFromContext returns the guard decision that admitted the request.
func ActionFromContext(ctx context.Context) (guard.Action, bool) {
	a, ok := ctx.Value(actionContextKey{}).(guard.Action)
	return a, ok
}

// Navigation guards page loads. GET and HEAD requests are decided with the request
// path as target and the Referer path as current; other methods pass through.
// A redirect back to the requested path is answered with 403 so a browser cannot
// loop on it.
func Navigation(g *guard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			if g == nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			target := permission.CleanPath(r.URL.Path)
			a := g.Decide(r.Context(), guard.Route{Target: target, Current: refererPath(r)})
			if !a.Proceeds() {
				if permission.CleanPath(a.Path) == target {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Redirect(w, r, a.Path, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), actionContextKey{}, a)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func refererPath(r *http.Request) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return ""
	}
	return permission.CleanPath(u.Path)
}
