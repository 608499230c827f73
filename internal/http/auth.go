package httpapi

import (
	"context"
	"net/http"
	"strings"

	"shodoshare-backend-go/internal/services"
)

type contextKey string

const (
	ctxUserID contextKey = "userID"
	ctxEmail  contextKey = "email"
	ctxRole   contextKey = "role"
)

// SessionCookie carries the access token for the server-rendered page tree;
// API clients use the Authorization header instead.
const SessionCookie = "ss_session"

func bearerOrCookieToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func resolveSession(tokens services.TokenService, tokenStr string) (userID, email, role string, ok bool) {
	if tokenStr == "" {
		return "", "", "", false
	}
	token, claims, err := tokens.ParseToken(tokenStr)
	if err != nil || !token.Valid || claims["typ"] != "access" {
		return "", "", "", false
	}
	userID, _ = claims["sub"].(string)
	email, _ = claims["email"].(string)
	role, _ = claims["role"].(string)
	if userID == "" {
		return "", "", "", false
	}
	return userID, email, role, true
}

func WithAuth(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, email, role, ok := resolveSession(tokens, bearerOrCookieToken(r))
			if !ok {
				WriteError(w, http.StatusUnauthorized, "ログインが必要です。")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserID, userID)
			ctx = context.WithValue(ctx, ctxEmail, email)
			ctx = context.WithValue(ctx, ctxRole, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithOptionalAuth attaches the session when present but never rejects;
// public listings use it to compute userHasLiked.
func WithOptionalAuth(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, email, role, ok := resolveSession(tokens, bearerOrCookieToken(r)); ok {
				ctx := context.WithValue(r.Context(), ctxUserID, userID)
				ctx = context.WithValue(ctx, ctxEmail, email)
				ctx = context.WithValue(ctx, ctxRole, role)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CurrentUserID(r *http.Request) string {
	if value, ok := r.Context().Value(ctxUserID).(string); ok {
		return value
	}
	return ""
}

func CurrentRole(r *http.Request) string {
	if value, ok := r.Context().Value(ctxRole).(string); ok {
		return value
	}
	return ""
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.EqualFold(CurrentRole(r), role) {
				WriteError(w, http.StatusForbidden, "この操作を行う権限がありません。")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
