package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	conquest "github.com/bcspragu/Conquest"
	"github.com/gorilla/mux"
)

type handlerFunc func(http.ResponseWriter, *http.Request) error

type gameHandler func(http.ResponseWriter, *http.Request, *userGame) error

// userGame is the logged in user making a request, and the game they're
// making it about.
type userGame struct {
	u *conquest.User
	g *conquest.Game
}

type gameCheck func(*userGame) error

type httpError struct {
	code int
	msg  string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("[%d] %s", e.code, e.msg)
}

func httpErrorf(code int, format string, args ...interface{}) error {
	return &httpError{code: code, msg: fmt.Sprintf(format, args...)}
}

// handle turns an error returned by h into an HTTP response. Errors that
// aren't *httpErrors are logged and reported as internal errors.
func (s *Srv) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var he *httpError
		if errors.As(err, &he) {
			http.Error(w, he.msg, he.code)
			return
		}
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// requireGameAuth loads the logged in user and the game from the URL, runs
// the given checks, and only then calls h.
func (s *Srv) requireGameAuth(h gameHandler, checks ...gameCheck) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		u, err := s.loadUser(r)
		if err != nil {
			return err
		}
		if u == nil {
			return httpErrorf(http.StatusUnauthorized, "Not logged in")
		}

		g, err := s.loadGame(r)
		if err != nil {
			return err
		}

		ug := &userGame{u: u, g: g}
		for _, check := range checks {
			if err := check(ug); err != nil {
				return err
			}
		}

		return h(w, r, ug)
	}
}

func isGamePending() gameCheck {
	return func(ug *userGame) error {
		if ug.g.Status != conquest.Pending {
			return httpErrorf(http.StatusBadRequest, "game %q isn't waiting for players", ug.g.ID)
		}
		return nil
	}
}

func isGamePlaying() gameCheck {
	return func(ug *userGame) error {
		if ug.g.Status != conquest.Playing {
			return httpErrorf(http.StatusBadRequest, "game %q isn't being played", ug.g.ID)
		}
		return nil
	}
}

func isPlayer() gameCheck {
	return func(ug *userGame) error {
		if ug.g.State.SideOf(ug.u.ID) == conquest.NoSide {
			return httpErrorf(http.StatusForbidden, "you aren't playing in game %q", ug.g.ID)
		}
		return nil
	}
}

// withTurnLock makes sure only one request at a time can load, change and
// store a given game.
func (s *Srv) withTurnLock(h handlerFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, ok := mux.Vars(r)["id"]
		if !ok {
			return httpErrorf(http.StatusBadRequest, "no game ID provided")
		}
		unlock := s.turns.lock(conquest.GameID(id))
		defer unlock()
		return h(w, r)
	}
}

// turnLocks hands out a mutex per game. Locks are dropped once nobody is
// holding or waiting on them.
type turnLocks struct {
	mu    sync.Mutex
	locks map[conquest.GameID]*turnLock
}

type turnLock struct {
	mu   sync.Mutex
	refs int
}

func newTurnLocks() *turnLocks {
	return &turnLocks{locks: make(map[conquest.GameID]*turnLock)}
}

func (t *turnLocks) lock(gID conquest.GameID) func() {
	t.mu.Lock()
	tl, ok := t.locks[gID]
	if !ok {
		tl = &turnLock{}
		t.locks[gID] = tl
	}
	tl.refs++
	t.mu.Unlock()

	tl.mu.Lock()
	return func() {
		tl.mu.Unlock()

		t.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(t.locks, gID)
		}
		t.mu.Unlock()
	}
}
