package ws

import (
	"log"
	"net/http"

	"github.com/vedran77/powderswap/internal/transport/http/middleware"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
func ServeWS(hub *Hub, jwtSecret string, sessions middleware.SessionChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		accountID, ok := middleware.ParseToken(tokenStr, jwtSecret)
		if !ok || !sessions.IsActive(accountID) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Allow any origin (dev mode)
		})
		if err != nil {
			log.Printf("ws: accept error: %v", err)
			return
		}

		client := NewClient(hub, conn, accountID)
		if !hub.Register(client) {
			conn.Close(websocket.StatusGoingAway, "shutting down")
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
