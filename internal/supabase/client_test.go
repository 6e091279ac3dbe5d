package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/model"
)

func TestInsertDemoRequest(t *testing.T) {
	t.Run("posts row with supabase headers", func(t *testing.T) {
		var gotPath, gotAPIKey, gotAuth, gotPrefer string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAPIKey = r.Header.Get("apikey")
			gotAuth = r.Header.Get("Authorization")
			gotPrefer = r.Header.Get("Prefer")
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := NewClient(server.URL, "anon-key")
		err := client.InsertDemoRequest(context.Background(), model.DemoRequest{
			Name:  "Ada",
			Email: "ada@example.com",
		})
		require.NoError(t, err)

		assert.Equal(t, "/rest/v1/demo_requests", gotPath)
		assert.Equal(t, "anon-key", gotAPIKey)
		assert.Equal(t, "Bearer anon-key", gotAuth)
		assert.Equal(t, "return=minimal", gotPrefer)
		assert.Equal(t, "Ada", gotBody["name"])
		assert.NotEmpty(t, gotBody["id"])
	})

	t.Run("surfaces supabase error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"duplicate"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "anon-key")
		err := client.InsertDemoRequest(context.Background(), model.DemoRequest{Name: "Ada", Email: "ada@example.com"})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSupabase, apperrors.GetCode(err))
	})
}

func TestInvoke(t *testing.T) {
	t.Run("posts to functions path", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "anon-key")
		err := client.Invoke(context.Background(), "send-demo-email", map[string]string{"email": "ada@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "/functions/v1/send-demo-email", gotPath)
	})
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient("", "").Enabled())
	assert.True(t, NewClient("https://xyz.supabase.co", "k").Enabled())

	err := NewClient("", "").Invoke(context.Background(), "send-demo-email", nil)
	assert.Error(t, err)
}
