package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	conquest "github.com/bcspragu/Conquest"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
)

type testEnv struct {
	h   *Hub
	srv *httptest.Server
}

func setup(t *testing.T) *testEnv {
	h := New()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade: %v", err)
			return
		}
		q := r.URL.Query()
		h.Register(ws, conquest.GameID(q.Get("game")), conquest.UserID(q.Get("user")))
	}))
	t.Cleanup(func() {
		srv.Close()
		h.Close()
	})
	return &testEnv{h: h, srv: srv}
}

func (env *testEnv) dial(t *testing.T, gID conquest.GameID, uID conquest.UserID) *websocket.Conn {
	t.Helper()
	addr := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/?game=" + string(gID) + "&user=" + string(uID)
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForWatchers blocks until the registrations have made it to the hub.
func (env *testEnv) waitForWatchers(t *testing.T, gID conquest.GameID, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for env.h.Watchers(gID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("game %q has %d watchers, want %d", gID, env.h.Watchers(gID), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func read(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return strings.TrimSpace(string(msg))
}

func TestToGame(t *testing.T) {
	env := setup(t)
	alice := env.dial(t, "game_0", "user_0")
	bob := env.dial(t, "game_0", "user_1")
	env.dial(t, "game_1", "user_2")
	env.waitForWatchers(t, "game_0", 2)
	env.waitForWatchers(t, "game_1", 1)

	if err := env.h.ToGame("game_0", map[string]string{"action": "HELLO"}); err != nil {
		t.Fatalf("ToGame: %v", err)
	}

	want := `{"action":"HELLO"}`
	for _, conn := range []*websocket.Conn{alice, bob} {
		if diff := cmp.Diff(want, read(t, conn)); diff != "" {
			t.Errorf("unexpected message (-want +got)\n%s", diff)
		}
	}
}

func TestToUser(t *testing.T) {
	env := setup(t)
	alice := env.dial(t, "game_0", "user_0")
	bob := env.dial(t, "game_0", "user_1")
	env.waitForWatchers(t, "game_0", 2)

	if err := env.h.ToUser("game_0", "user_1", map[string]string{"action": "JUST_BOB"}); err != nil {
		t.Fatalf("ToUser: %v", err)
	}
	if err := env.h.ToGame("game_0", map[string]string{"action": "EVERYONE"}); err != nil {
		t.Fatalf("ToGame: %v", err)
	}

	// Alice only sees the broadcast, Bob sees both in order.
	if got := read(t, alice); got != `{"action":"EVERYONE"}` {
		t.Errorf("alice got %s", got)
	}
	if got := read(t, bob); got != `{"action":"JUST_BOB"}` {
		t.Errorf("bob got %s first", got)
	}
	if got := read(t, bob); got != `{"action":"EVERYONE"}` {
		t.Errorf("bob got %s second", got)
	}
}

func TestUnregisterOnClose(t *testing.T) {
	env := setup(t)
	conn := env.dial(t, "game_0", "user_0")
	env.waitForWatchers(t, "game_0", 1)

	conn.Close()
	env.waitForWatchers(t, "game_0", 0)
}

func TestToGame_Unencodable(t *testing.T) {
	env := setup(t)
	if err := env.h.ToGame("game_0", make(chan int)); err == nil {
		t.Error("ToGame with a channel should fail to encode")
	}
}
