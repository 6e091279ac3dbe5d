package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasap/portal-server-go/internal/chatdemo"
)

func TestDemoChatStream(t *testing.T) {
	script := []chatdemo.Line{
		{Role: chatdemo.RoleVisitor, Text: "Is the 2BR still available?", Typing: time.Millisecond},
		{Role: chatdemo.RoleBot, Text: "It is! Want to book a tour?", Typing: time.Millisecond},
	}
	h := NewDemoChatHandler(script, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/demo/chat", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: typing")
	assert.Contains(t, body, "event: message")
	assert.Contains(t, body, "Is the 2BR still available?")
	assert.Contains(t, body, "Want to book a tour?")
	// non-looping playback ends instead of emitting a reset
	assert.NotContains(t, body, "event: reset")
}

func TestDemoChatStreamCancellation(t *testing.T) {
	script := []chatdemo.Line{
		{Role: chatdemo.RoleBot, Text: "never sent", Typing: time.Hour},
	}
	h := NewDemoChatHandler(script, true)

	req := httptest.NewRequest(http.MethodGet, "/api/demo/chat", nil)
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)

	done := make(chan struct{})
	rec := httptest.NewRecorder()
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}

	assert.NotContains(t, rec.Body.String(), "never sent")
}
