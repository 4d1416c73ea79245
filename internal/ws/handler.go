package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jtaylor-dev/avalon-backend/internal/game"
	"github.com/jtaylor-dev/avalon-backend/internal/session"
	"github.com/jtaylor-dev/avalon-backend/internal/types"
)

// Handler upgrades to a websocket and streams session events to the
// client. The name query parameter is the roster name the client
// observes as; private events (the role reveal) only reach connections
// attached under that name. No name means spectator: broadcasts only.
func Handler(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan game.Event, 16)
		clientID := uuid.NewString()

		select {
		case s.Inbox() <- session.Attach{ClientID: clientID, Player: name, Outbox: out}:
		case <-s.Done():
			return
		}
		defer func() {
			select {
			case s.Inbox() <- session.Detach{ClientID: clientID}:
			case <-s.Done():
			}
		}()

		log.Debug("client attached",
			zap.String("client_id", clientID),
			zap.String("player", name))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for ev := range out {
				payload, _ := json.Marshal(types.FromEvent(ev))
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Clients act over HTTP; reads only notice the peer going away.
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}
