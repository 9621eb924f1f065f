package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/NethermindEth/magi/communication"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // front end may be served from a file or another port
	},
}

// HandleWebSocket streams council events to the client until it disconnects
func HandleWebSocket(hub *communication.WebSocketManager, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("Failed to upgrade connection", zap.Error(err))
			return
		}

		if err := hub.Register(c.Request.Context(), conn); err != nil {
			conn.Close()
			return
		}

		// the stream is write-only; reading detects the disconnect
		go func() {
			defer hub.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
