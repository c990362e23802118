package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// reconnectDelay is the SSE retry hint; a page that loses the stream
// reconnects and is replayed the current view.
const reconnectDelay = 3 * time.Second

// Stream serves re-rendered views as Server-Sent Events. Idle connections get
// a comment line every heartbeat so proxies keep them open across the
// inactivity countdown.
func (a *API) Stream(w http.ResponseWriter, r *http.Request) {
	if a.stream == nil {
		respondError(w, r, http.StatusServiceUnavailable, "streaming disabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	views := a.stream.Subscribe(ctx)

	fmt.Fprintf(w, "retry: %d\n\n", reconnectDelay.Milliseconds())
	flusher.Flush()

	heartbeat := time.NewTicker(a.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case event, open := <-views:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: view\ndata: %s\n\n", event.Seq, payload)
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		flusher.Flush()
	}
}
