package hub

import (
	"log"
	"time"

	conquest "github.com/bcspragu/Conquest"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients don't send us anything but pongs and close frames.
	maxMessageSize = 512
)

// connection is a single WebSocket watching a game.
type connection struct {
	id     string
	h      *Hub
	gameID conquest.GameID
	userID conquest.UserID

	// Buffered channel of outbound messages. Closed by the hub when the
	// connection is dropped.
	send chan []byte

	ws *websocket.Conn
}

// readPump discards everything the client sends, but has to be running for
// pongs and close frames to be processed.
func (c *connection) readPump() {
	defer func() {
		select {
		case c.h.unregister <- c:
		case <-c.h.done:
		}
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("connection %s closed: %v", c.id, err)
			}
			return
		}
	}
}

// writePump sends queued messages and keep-alive pings to the client.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
