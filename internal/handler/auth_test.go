package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasap/portal-server-go/internal/middleware"
	"github.com/leasap/portal-server-go/internal/repository"
	"github.com/leasap/portal-server-go/internal/service"
	"github.com/leasap/portal-server-go/internal/supabase"
	"github.com/leasap/portal-server-go/internal/upstream"
)

func newAuthFixture(t *testing.T, backend http.Handler) (*AuthHandler, *repository.MemoryCredentialStore) {
	t.Helper()

	backendServer := httptest.NewServer(backend)
	t.Cleanup(backendServer.Close)

	store := repository.NewMemoryCredentialStore()
	client := upstream.NewClient(backendServer.URL, store, 5*time.Second)
	auth := service.NewAuthService(store, client, supabase.NewClient("", ""), "test-secret", time.Hour)
	dashboards := service.NewDashboardService(client)

	return NewAuthHandler(auth, dashboards, time.Hour, false), store
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}
	return nil
}

func TestSignInHandler(t *testing.T) {
	t.Run("success sets the session cookie", func(t *testing.T) {
		h, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{
				"access_token": "at-1",
				"realtor_id":   "r-1",
				"user_type":    "realtor",
				"user_name":    "Jordan Lee",
			})
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
			strings.NewReader(`{"email": "r@example.com", "password": "pw-123456"}`))
		rec := httptest.NewRecorder()
		h.SignIn(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		cookie := sessionCookieFrom(rec)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, 1, store.Len())

		var body struct {
			User map[string]any `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "r-1", body.User["accountId"])
		assert.Equal(t, "Jordan Lee", body.User["name"])
	})

	t.Run("bad credentials set no cookie", func(t *testing.T) {
		h, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
			strings.NewReader(`{"email": "r@example.com", "password": "wrong-pass"}`))
		rec := httptest.NewRecorder()
		h.SignIn(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, sessionCookieFrom(rec))
		assert.Zero(t, store.Len())
	})
}

func TestLogoutHandler(t *testing.T) {
	h, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "at-1",
			"realtor_id":   "r-1",
			"user_type":    "realtor",
		})
	}))

	// sign in first to get a real cookie
	signin := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		strings.NewReader(`{"email": "r@example.com", "password": "pw-123456"}`))
	signinRec := httptest.NewRecorder()
	h.SignIn(signinRec, signin)
	cookie := sessionCookieFrom(signinRec)
	require.NotNil(t, cookie)
	require.Equal(t, 1, store.Len())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, store.Len())

	cleared := sessionCookieFrom(rec)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	// logout without a cookie is still fine
	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
