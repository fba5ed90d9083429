// Package hub fans game updates out to everyone watching a game over a
// WebSocket.
package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"

	conquest "github.com/bcspragu/Conquest"
	"github.com/gorilla/websocket"
)

// Hub maintains the set of active connections and broadcasts messages to the
// connections. All of its state is owned by the run goroutine.
type Hub struct {
	// Registered connections.
	connections map[conquest.GameID][]*connection

	// Messages to send to everyone in a game.
	broadcast chan *broadcastMsg

	// Messages to send to a single person in a game.
	user chan *userMsg

	// Register requests from the connections.
	register chan *connection

	// Unregister requests from connections.
	unregister chan *connection

	// Requests for the number of connections in a game.
	count chan *countReq

	done chan struct{}

	nextID uint64
}

// New creates a new Hub and starts it in a background Go routine.
func New() *Hub {
	h := &Hub{
		broadcast:   make(chan *broadcastMsg),
		user:        make(chan *userMsg),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		count:       make(chan *countReq),
		done:        make(chan struct{}),
		connections: make(map[conquest.GameID][]*connection),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.connections[c.gameID] = append(h.connections[c.gameID], c)
		case c := <-h.unregister:
			h.deleteConn(c)
		case m := <-h.broadcast:
			h.send(m.gameID, m.msg, func(*connection) bool { return true })
		case m := <-h.user:
			h.send(m.gameID, m.msg, func(c *connection) bool { return c.userID == m.userID })
		case req := <-h.count:
			req.resp <- len(h.connections[req.gameID])
		case <-h.done:
			for _, conns := range h.connections {
				for _, c := range conns {
					close(c.send)
				}
			}
			h.connections = nil
			return
		}
	}
}

// send queues msg on every matching connection in the game. Connections with
// a full buffer are assumed dead and dropped.
func (h *Hub) send(gID conquest.GameID, msg []byte, match func(*connection) bool) {
	var dead []*connection
	for _, c := range h.connections[gID] {
		if !match(c) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		h.deleteConn(c)
	}
}

func (h *Hub) deleteConn(c *connection) {
	conns := h.connections[c.gameID]
	for i, conn := range conns {
		if conn.id != c.id {
			continue
		}
		close(c.send)
		copy(conns[i:], conns[i+1:])
		conns[len(conns)-1] = nil
		conns = conns[:len(conns)-1]
		if len(conns) == 0 {
			delete(h.connections, c.gameID)
		} else {
			h.connections[c.gameID] = conns
		}
		return
	}
}

type broadcastMsg struct {
	gameID conquest.GameID
	msg    []byte
}

// ToGame sends a message to everyone in a game.
func (h *Hub) ToGame(gID conquest.GameID, msg interface{}) error {
	dat, err := encode(msg)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- &broadcastMsg{gameID: gID, msg: dat}:
	case <-h.done:
	}
	return nil
}

type userMsg struct {
	gameID conquest.GameID
	userID conquest.UserID
	msg    []byte
}

// ToUser sends a message to every connection a user has open to a game.
func (h *Hub) ToUser(gID conquest.GameID, uID conquest.UserID, msg interface{}) error {
	dat, err := encode(msg)
	if err != nil {
		return err
	}

	select {
	case h.user <- &userMsg{gameID: gID, userID: uID, msg: dat}:
	case <-h.done:
	}
	return nil
}

func encode(msg interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return buf.Bytes(), nil
}

type countReq struct {
	gameID conquest.GameID
	resp   chan int
}

// Watchers returns how many connections are open to a game.
func (h *Hub) Watchers(gID conquest.GameID) int {
	req := &countReq{gameID: gID, resp: make(chan int, 1)}
	select {
	case h.count <- req:
		return <-req.resp
	case <-h.done:
		return 0
	}
}

// Register associates a connection with the hub and a given game.
func (h *Hub) Register(ws *websocket.Conn, gID conquest.GameID, uID conquest.UserID) {
	conn := &connection{
		id:     fmt.Sprintf("%s-%d", gID, atomic.AddUint64(&h.nextID, 1)),
		h:      h,
		gameID: gID,
		userID: uID,
		send:   make(chan []byte, 256),
		ws:     ws,
	}
	select {
	case h.register <- conn:
	case <-h.done:
		ws.Close()
		return
	}
	go conn.writePump()
	go conn.readPump()
}

// Close disconnects everyone and stops the hub.
func (h *Hub) Close() {
	close(h.done)
}
