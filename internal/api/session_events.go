package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/events"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/session"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SessionEventsHandler handles GET /api/v1/sessions/{sessionID}/events. Every
// bus event is forwarded as {event, payload, at}. Slow clients lose events
// rather than stall the simulator.
func SessionEventsHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied when the handshake was malformed
			logging.Warn(constants.MsgUpgradeFailed, "session_id", s.ID, "error", err.Error())
			return
		}
		defer conn.Close()

		log := logging.WithSession(s.ID)
		out := make(chan events.Event, wsBuffer)
		sub := s.Bus.Subscribe(events.All, func(ev events.Event) {
			select {
			case out <- ev:
			default:
				log.Warnw("Dropping event for slow WebSocket client", "event", ev.Name)
			}
		})
		defer sub.Unsubscribe()

		// The read loop only services control frames and notices disconnects
		closed := make(chan struct{})
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()

		log.Infow("WebSocket client attached")
		for {
			select {
			case ev := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(ev); err != nil {
					log.Debugw("WebSocket write failed", "error", err.Error())
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-s.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, constants.MsgSessionNotFound),
					time.Now().Add(wsWriteWait))
				return
			case <-closed:
				log.Infow("WebSocket client detached")
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}

