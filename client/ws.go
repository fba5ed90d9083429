package client

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	conquest "github.com/bcspragu/Conquest"
	"github.com/bcspragu/Conquest/web"
	"github.com/gorilla/websocket"
)

type wsClient struct {
	conn  *websocket.Conn
	msgs  chan []byte
	done  chan struct{}
	hooks WSHooks
}

type WSHooks struct {
	OnConnect    func()
	OnStart      func(*web.GameStart)
	OnCardPlaced func(*web.CardPlaced)
	OnEnd        func(*web.GameEnd)
}

// ListenForUpdates connects to the game's WebSocket and calls hooks for each
// message, one at a time. It blocks until the connection is closed.
func (c *Client) ListenForUpdates(gID conquest.GameID, hooks WSHooks) error {
	scheme := "ws"
	if c.scheme == "https" {
		scheme = "wss"
	}

	addr := scheme + "://" + c.addr + "/api/game/" + string(gID) + "/ws"

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
		Jar:              c.http.Jar,
	}
	conn, _, err := dialer.Dial(addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer conn.Close()

	if hooks.OnConnect != nil {
		go hooks.OnConnect()
	}

	wsc := &wsClient{
		conn: conn,
		done: make(chan struct{}),
		// Buffered so messages can pile up while a hook waits on user input.
		msgs:  make(chan []byte, 100),
		hooks: hooks,
	}

	go wsc.handleMessages()

	return wsc.read()
}

func (ws *wsClient) read() error {
	defer close(ws.done)
	for {
		messageType, message, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("ReadMessage: %w", err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		ws.msgs <- message
	}
}

func (ws *wsClient) handleMessages() {
	for {
		select {
		case <-ws.done:
			return
		case msg := <-ws.msgs:
			if err := ws.handle(msg); err != nil {
				log.Printf("failed to handle message: %v", err)
			}
		}
	}
}

func (ws *wsClient) handle(msg []byte) error {
	var justAction struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(msg, &justAction); err != nil {
		return fmt.Errorf("failed to unmarshal action from server: %w", err)
	}

	switch justAction.Action {
	case web.ActionGameStart:
		var gs web.GameStart
		if err := json.Unmarshal(msg, &gs); err != nil {
			return fmt.Errorf("GAME_START: %w", err)
		}
		if ws.hooks.OnStart != nil {
			ws.hooks.OnStart(&gs)
		}
	case web.ActionCardPlaced:
		var cp web.CardPlaced
		if err := json.Unmarshal(msg, &cp); err != nil {
			return fmt.Errorf("CARD_PLACED: %w", err)
		}
		if ws.hooks.OnCardPlaced != nil {
			ws.hooks.OnCardPlaced(&cp)
		}
	case web.ActionGameEnd:
		var ge web.GameEnd
		if err := json.Unmarshal(msg, &ge); err != nil {
			return fmt.Errorf("GAME_END: %w", err)
		}
		if ws.hooks.OnEnd != nil {
			ws.hooks.OnEnd(&ge)
		}
	default:
		return fmt.Errorf("unknown message action %q", justAction.Action)
	}
	return nil
}
