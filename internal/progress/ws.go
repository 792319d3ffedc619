package progress

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // OK for local use; restrict in production
	},
}

const maxInboundMessage = 512

func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.AddWS(ws)
		defer func() {
			hub.RemoveWS(ws)
			log.Printf("[ws] client disconnected: %s", ws.RemoteAddr())
		}()
		log.Printf("[ws] client connected: %s", ws.RemoteAddr())

		_ = ws.WriteMessage(
			websocket.TextMessage,
			[]byte(`{"type":"welcome","transport":"websocket"}`+"\n"),
		)

		// The feed is one-way; inbound messages are drained only to keep
		// the connection's control frames flowing.
		ws.SetReadLimit(maxInboundMessage)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}
