package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/leasap/portal-server-go/internal/chatdemo"
)

// DemoChatHandler streams the scripted marketing chatbot over SSE. Each
// connection gets its own player; nothing is shared between viewers.
type DemoChatHandler struct {
	script []chatdemo.Line
	loop   bool
}

func NewDemoChatHandler(script []chatdemo.Line, loop bool) *DemoChatHandler {
	return &DemoChatHandler{script: script, loop: loop}
}

func (h *DemoChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	log.Info().Str("ip", r.RemoteAddr).Msg("demo chat stream opened")

	player := chatdemo.NewPlayer(h.script, h.loop)

	emit := func(event chatdemo.Event) {
		data, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
		flusher.Flush()
	}

	if err := player.Run(r.Context(), emit); err != nil {
		log.Debug().Err(err).Msg("demo chat stream closed")
	}
}
