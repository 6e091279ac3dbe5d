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

	"github.com/leasap/portal-server-go/internal/repository"
	"github.com/leasap/portal-server-go/internal/service"
	"github.com/leasap/portal-server-go/internal/supabase"
	"github.com/leasap/portal-server-go/internal/upstream"
)

func newFormsHandler(t *testing.T, backend http.Handler, supabaseHandler http.Handler) *FormsHandler {
	t.Helper()

	backendServer := httptest.NewServer(backend)
	t.Cleanup(backendServer.Close)

	supabaseURL := ""
	if supabaseHandler != nil {
		sb := httptest.NewServer(supabaseHandler)
		t.Cleanup(sb.Close)
		supabaseURL = sb.URL
	}

	client := upstream.NewClient(backendServer.URL, repository.NewMemoryCredentialStore(), 5*time.Second)
	return NewFormsHandler(service.NewFormsService(client, supabase.NewClient(supabaseURL, "anon-key")))
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestContactHandler(t *testing.T) {
	t.Run("valid submission succeeds", func(t *testing.T) {
		h := newFormsHandler(t,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/contact", r.URL.Path)
				w.Write([]byte(`{}`))
			}),
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		)

		rec := postJSON(t, h.Contact, "/api/contact",
			`{"name": "Sam", "email": "sam@example.com", "message": "tell me more about pricing"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["message"], "Thanks")
	})

	t.Run("email failure downgrades the message only", func(t *testing.T) {
		h := newFormsHandler(t,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}),
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}),
		)

		rec := postJSON(t, h.Contact, "/api/contact",
			`{"name": "Sam", "email": "sam@example.com", "message": "tell me more about pricing"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["message"], "could not be sent")
	})

	t.Run("validation error is a 400", func(t *testing.T) {
		h := newFormsHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("backend should not be called")
		}), nil)

		rec := postJSON(t, h.Contact, "/api/contact", `{"name": "Sam", "email": "sam@example.com", "message": "hi"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		h := newFormsHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), nil)

		rec := postJSON(t, h.Contact, "/api/contact", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookDemoHandler(t *testing.T) {
	t.Run("persisted with email", func(t *testing.T) {
		h := newFormsHandler(t,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("backend should not be called when supabase is configured")
			}),
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			}),
		)

		rec := postJSON(t, h.BookDemo, "/api/book-demo",
			`{"name": "Sam", "email": "sam@example.com", "company": "Acme Realty"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["message"], "Demo booked")
	})

	t.Run("insert failure is a 502", func(t *testing.T) {
		h := newFormsHandler(t,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}),
		)

		rec := postJSON(t, h.BookDemo, "/api/book-demo",
			`{"name": "Sam", "email": "sam@example.com"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
