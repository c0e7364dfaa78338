// internal/httpserver/stream.go
//
// GET /game/{id}/ws pushes a game.Snapshot every time the session changes.
// The stream is read-only: moves still go through the JSON endpoints.
// The socket closes when the client goes away or the session is destroyed.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/unscramble/internal/game"
	"github.com/robalobadob/unscramble/internal/store"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 25 * time.Second
)

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == s.cfg.ClientOrigin
		},
	}
}

// handleStream subscribes the caller to their session's snapshots.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	updates := make(chan game.Snapshot, 16)

	var (
		first  game.Snapshot
		cancel func()
	)
	err := s.store.Update(r.Context(), id, func(e *store.Entry) error {
		if err := s.checkOwner(r, e); err != nil {
			return err
		}
		first = e.Session.Snapshot()
		cancel = e.Session.Subscribe(func(snap game.Snapshot) {
			select {
			case updates <- snap:
			default: // slow reader; it will catch up on the next change
			}
		})
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	unsubscribe := func() {
		_ = s.store.Update(r.Context(), id, func(*store.Entry) error {
			cancel()
			return nil
		})
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session", id).Msg("ws upgrade")
		unsubscribe()
		return
	}
	defer conn.Close()
	defer unsubscribe()

	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Reader: only needed to process control frames and notice the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(snap game.Snapshot) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(snap) == nil
	}
	if !send(first) {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case snap := <-updates:
			if !send(snap) {
				return
			}
		case <-ticker.C:
			if _, err := s.store.Get(r.Context(), id); err != nil {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}
