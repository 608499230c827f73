package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"shodoshare-backend-go/internal/models"
	"shodoshare-backend-go/internal/services"
)

// authRequiredPaths are the page prefixes that need a session before render.
var authRequiredPaths = []string{
	"/artworks/upload",
	"/profile",
	"/admin",
}

func pathNeedsAuth(path string) bool {
	for _, prefix := range authRequiredPaths {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func pathIsAdmin(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}

// PageGuard protects the page tree. The session is resolved from the
// session cookie; a failed or missing resolution on a protected path
// redirects to sign-in with the original path preserved, never a silent
// allow. Admin paths also require the admin role and bounce non-admins to
// the home page.
func PageGuard(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			needsAuth := pathNeedsAuth(path)
			isAdmin := pathIsAdmin(path)
			if !needsAuth && !isAdmin {
				next.ServeHTTP(w, r)
				return
			}
			var tokenStr string
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				tokenStr = cookie.Value
			}
			_, _, role, ok := resolveSession(tokens, tokenStr)
			if !ok {
				http.Redirect(w, r, "/auth/signin?redirect="+url.QueryEscape(path), http.StatusFound)
				return
			}
			if isAdmin && !strings.EqualFold(role, models.RoleAdmin) {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
