package httpapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"shodoshare-backend-go/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardTestTokens() services.TokenService {
	return services.TokenService{
		Secret:     []byte("guard-test-secret"),
		Issuer:     "shodoshare-test",
		AccessTTL:  time.Hour,
		RefreshTTL: time.Hour,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func sessionCookie(t *testing.T, tokens services.TokenService, role string) *http.Cookie {
	t.Helper()
	access, _, err := tokens.CreateAccessToken("user-1", "hana@example.jp", role)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookie, Value: access}
}

func TestPageGuardRedirectsAnonymousToSignIn(t *testing.T) {
	tokens := guardTestTokens()
	handler := PageGuard(tokens)(okHandler())

	for _, path := range []string{"/profile", "/artworks/upload", "/profile/settings"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code, path)
		location := rec.Header().Get("Location")
		assert.Contains(t, location, "/auth/signin?redirect=")
		assert.Contains(t, location, "redirect="+url.QueryEscape(path))
	}
}

func TestPageGuardAllowsPublicPaths(t *testing.T) {
	tokens := guardTestTokens()
	handler := PageGuard(tokens)(okHandler())

	for _, path := range []string{"/", "/gallery", "/artworks/123", "/profiles"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestPageGuardRejectsInvalidToken(t *testing.T) {
	tokens := guardTestTokens()
	handler := PageGuard(tokens)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/auth/signin")
}

func TestPageGuardAllowsSignedInUser(t *testing.T) {
	tokens := guardTestTokens()
	handler := PageGuard(tokens)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(sessionCookie(t, tokens, "user"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPageGuardBouncesNonAdminFromAdminPages(t *testing.T) {
	tokens := guardTestTokens()
	handler := PageGuard(tokens)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(sessionCookie(t, tokens, "user"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestPageGuardAllowsAdmin(t *testing.T) {
	tokens := guardTestTokens()
	handler := PageGuard(tokens)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(sessionCookie(t, tokens, "admin"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPathNeedsAuthPrefixBoundaries(t *testing.T) {
	assert.True(t, pathNeedsAuth("/profile"))
	assert.True(t, pathNeedsAuth("/profile/edit"))
	assert.False(t, pathNeedsAuth("/profiles"))
	assert.False(t, pathNeedsAuth("/artworks/uploaded"))
	assert.True(t, pathNeedsAuth("/artworks/upload"))
}
