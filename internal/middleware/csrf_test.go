package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == CSRFCookieName {
			return cookie
		}
	}
	t.Fatal("csrf cookie not set")
	return nil
}

func TestCSRFMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewCSRFMiddleware(false).Handler(okHandler)

	t.Run("GET seeds the cookie and passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signin", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		cookie := csrfCookieFrom(t, rec)
		assert.NotEmpty(t, cookie.Value)
		assert.False(t, cookie.HttpOnly)
	})

	t.Run("POST without the header is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("POST with a mismatched header is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
		req.Header.Set(CSRFHeaderName, "other")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("POST with the matching header passes", func(t *testing.T) {
		// fetch the token the way a page script would
		seed := httptest.NewRecorder()
		handler.ServeHTTP(seed, httptest.NewRequest(http.MethodGet, "/signin", nil))
		token := csrfCookieFrom(t, seed).Value
		require.NotEmpty(t, token)

		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
		req.Header.Set(CSRFHeaderName, token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
