package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	ws "github.com/rentalsync/backend/internal/websocket"
)

const (
	statusWriteWait  = 10 * time.Second
	statusPongWait   = 60 * time.Second
	statusPingPeriod = statusPongWait / 2
	// dashboards never send anything meaningful
	statusReadLimit = 512
)

var statusUpgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 4096,
	// dashboards are served from other origins
	CheckOrigin: func(*http.Request) bool { return true },
}

// WebSocketUpgrade returns a handler that subscribes a dashboard to live sync
// status events.
func WebSocketUpgrade(hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := statusUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Status stream upgrade failed for %s: %v", r.RemoteAddr, err)
			return
		}

		sub := ws.NewClient(hub)
		hub.Register(sub)

		go streamStatus(conn, sub)
		go drainStatusConn(conn, func() { hub.Unregister(sub) })
	}
}

// streamStatus forwards hub events to conn and pings it so idle dashboards
// stay connected. It returns once the hub closes the subscription or a write
// fails.
func streamStatus(conn *websocket.Conn, sub *ws.Client) {
	ping := time.NewTicker(statusPingPeriod)
	defer ping.Stop()
	defer conn.Close()

	for {
		var (
			kind    = websocket.PingMessage
			payload []byte
		)
		select {
		case event, open := <-sub.Send():
			if !open {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "sync stream closed"),
					time.Now().Add(statusWriteWait))
				return
			}
			kind, payload = websocket.TextMessage, event
		case <-ping.C:
		}

		conn.SetWriteDeadline(time.Now().Add(statusWriteWait))
		if err := conn.WriteMessage(kind, payload); err != nil {
			return
		}
	}
}

// drainStatusConn reads until the peer goes away so pongs and close frames
// are processed, then runs done.
func drainStatusConn(conn *websocket.Conn, done func()) {
	defer conn.Close()
	defer done()

	conn.SetReadLimit(statusReadLimit)
	conn.SetReadDeadline(time.Now().Add(statusPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(statusPongWait))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Status stream closed unexpectedly: %v", err)
			}
			return
		}
	}
}
