package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"gpsdclient/feed"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The monitor is meant for LAN/localhost use.
		return true
	},
}

// StatusSource yields the current aggregate view on demand.
type StatusSource func() feed.Snapshot

// Handler serves the monitor API:
//
//	GET /api/status  one JSON snapshot
//	GET /ws          websocket pushing a JSON snapshot per update
func Handler(status StatusSource, b *FixBroadcaster, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		snap := status()
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Warn("status encode failed", "err", err)
		}
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		id, ch := b.Subscribe(4)
		defer b.Unsubscribe(id)

		// Drain client frames so pings/closes are processed; the
		// monitor stream is one-way.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					_ = conn.Close()
					return
				}
			}
		}()

		for snap := range ch {
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	})

	return r
}
