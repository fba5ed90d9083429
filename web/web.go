package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync"

	conquest "github.com/bcspragu/Conquest"
	"github.com/bcspragu/Conquest/ai"
	"github.com/bcspragu/Conquest/cardgen"
	"github.com/bcspragu/Conquest/game"
	"github.com/bcspragu/Conquest/hub"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/websocket"
)

type Srv struct {
	sc       *securecookie.SecureCookie
	hub      *hub.Hub
	mux      *mux.Router
	db       conquest.DB
	upgrader websocket.Upgrader
	turns    *turnLocks
	computer conquest.Player

	// r isn't safe for concurrent use, so it's guarded by rMu.
	rMu sync.Mutex
	r   *rand.Rand
}

// New returns an initialized server.
func New(db conquest.DB, r *rand.Rand, sc *securecookie.SecureCookie) *Srv {
	s := &Srv{
		sc:       sc,
		hub:      hub.New(),
		db:       db,
		r:        r,
		turns:    newTurnLocks(),
		computer: ai.Greedy{},
	}

	s.mux = s.initMux()

	return s
}

func (s *Srv) initMux() *mux.Router {
	m := mux.NewRouter()
	// New user.
	m.HandleFunc("/api/user", s.handle(s.serveCreateUser)).Methods("POST")
	// Load user.
	m.HandleFunc("/api/user", s.handle(s.serveUser)).Methods("GET")
	// New game.
	m.HandleFunc("/api/game", s.handle(s.serveCreateGame)).Methods("POST")
	// Pending games.
	m.HandleFunc("/api/games", s.handle(s.servePendingGames)).Methods("GET")
	// Get game.
	m.HandleFunc("/api/game/{id}", s.handle(s.serveGame)).Methods("GET")
	// Join game.
	m.HandleFunc("/api/game/{id}/join", s.handle(s.withTurnLock(s.requireGameAuth(s.serveJoinGame, isGamePending())))).Methods("POST")
	// Place a card.
	m.HandleFunc("/api/game/{id}/move", s.handle(s.withTurnLock(s.requireGameAuth(s.serveMove, isGamePlaying(), isPlayer())))).Methods("POST")

	// WebSocket handler for games.
	m.HandleFunc("/api/game/{id}/ws", s.handle(s.serveData)).Methods("GET")

	return m
}

func (s *Srv) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops the hub, disconnecting all WebSocket clients.
func (s *Srv) Close() {
	s.hub.Close()
}

func (s *Srv) serveCreateUser(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return httpErrorf(http.StatusBadRequest, "malformed request: %v", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return httpErrorf(http.StatusBadRequest, "No name given")
	}

	id, err := s.db.NewUser(&conquest.User{Name: name})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	encoded, err := s.sc.Encode("auth", id)
	if err != nil {
		return fmt.Errorf("failed to encode auth cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Authorization",
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
	})

	jsonResp(w, struct {
		UserID string `json:"user_id"`
	}{string(id)})
	return nil
}

func (s *Srv) serveUser(w http.ResponseWriter, r *http.Request) error {
	u, err := s.loadUser(r)
	if err != nil {
		return err
	}
	if u == nil {
		return httpErrorf(http.StatusUnauthorized, "Not logged in")
	}

	jsonResp(w, u)
	return nil
}

func (s *Srv) serveCreateGame(w http.ResponseWriter, r *http.Request) error {
	u, err := s.loadUser(r)
	if err != nil {
		return err
	}
	if u == nil {
		return httpErrorf(http.StatusUnauthorized, "Not logged in")
	}

	var req struct {
		// Opponent is "computer" to play the server, or empty to wait for another
		// player.
		Opponent string `json:"opponent"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return httpErrorf(http.StatusBadRequest, "malformed request: %v", err)
		}
	}

	s.rMu.Lock()
	state := cardgen.NewState(cardgen.Starter(s.r), s.r)
	s.rMu.Unlock()
	state.Home = u.ID

	switch req.Opponent {
	case "":
	case string(conquest.ComputerID):
		state.Away = conquest.ComputerID
	default:
		return httpErrorf(http.StatusBadRequest, "unknown opponent %q", req.Opponent)
	}

	id, err := s.db.NewGame(&conquest.Game{
		CreatedBy: u.ID,
		State:     state,
	})
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	if state.Away == conquest.ComputerID {
		// The computer might be going first.
		unlock := s.turns.lock(id)
		err := s.playComputer(id)
		unlock()
		if err != nil {
			return err
		}
	}

	jsonResp(w, struct {
		ID string `json:"id"`
	}{string(id)})
	return nil
}

func (s *Srv) servePendingGames(w http.ResponseWriter, r *http.Request) error {
	gIDs, err := s.db.PendingGames()
	if err != nil {
		return fmt.Errorf("failed to load pending games: %w", err)
	}
	if gIDs == nil {
		gIDs = []conquest.GameID{}
	}

	jsonResp(w, gIDs)
	return nil
}

func (s *Srv) serveGame(w http.ResponseWriter, r *http.Request) error {
	g, err := s.loadGame(r)
	if err != nil {
		return err
	}

	jsonResp(w, g)
	return nil
}

func (s *Srv) serveJoinGame(w http.ResponseWriter, r *http.Request, ug *userGame) error {
	if err := s.db.JoinGame(ug.g.ID, ug.u.ID); err != nil {
		var je *conquest.JoinError
		if errors.As(err, &je) {
			return httpErrorf(http.StatusBadRequest, "%v", err)
		}
		return fmt.Errorf("failed to join game: %w", err)
	}

	g, err := s.db.Game(ug.g.ID)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}

	if err := s.hub.ToGame(g.ID, &GameStart{Game: g}); err != nil {
		log.Printf("failed to broadcast game start for %q: %v", g.ID, err)
	}

	jsonResp(w, struct {
		Success bool `json:"success"`
	}{true})
	return nil
}

func (s *Srv) serveMove(w http.ResponseWriter, r *http.Request, ug *userGame) error {
	var req conquest.Placement
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return httpErrorf(http.StatusBadRequest, "malformed request: %v", err)
	}

	side := ug.g.State.SideOf(ug.u.ID)
	res, status, err := s.applyMove(ug.g, side, &req)
	if err != nil {
		return err
	}

	if status == conquest.Playing && ug.g.State.Away == conquest.ComputerID {
		if err := s.playComputer(ug.g.ID); err != nil {
			return err
		}
		// The computer's reply may have ended the game.
		g, err := s.db.Game(ug.g.ID)
		if err != nil {
			return fmt.Errorf("failed to load game: %w", err)
		}
		status = g.Status
	}

	jsonResp(w, struct {
		Flipped []int               `json:"flipped"`
		Status  conquest.GameStatus `json:"status"`
	}{res.Flipped, status})
	return nil
}

// applyMove runs a move against g, stores the result and tells everyone
// watching. Callers must hold the turn lock for the game.
func (s *Srv) applyMove(g *conquest.Game, side conquest.Side, pl *conquest.Placement) (*game.Result, conquest.GameStatus, error) {
	hand := g.State.Hand(side)
	var card conquest.Card
	if pl.Card >= 0 && pl.Card < len(hand) {
		card = hand[pl.Card]
	}

	gm := game.New(g.State)
	state, status, res, err := gm.Move(&game.Move{Side: side, Card: pl.Card, Cell: pl.Cell})
	switch {
	case errors.Is(err, game.ErrBadCard), errors.Is(err, game.ErrBadCell):
		return nil, "", httpErrorf(http.StatusBadRequest, "%v", err)
	case errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrCellTaken), errors.Is(err, game.ErrGameOver):
		return nil, "", httpErrorf(http.StatusConflict, "%v", err)
	case err != nil:
		return nil, "", fmt.Errorf("failed to make move: %w", err)
	}

	if err := s.db.UpdateState(g.ID, state); err != nil {
		return nil, "", fmt.Errorf("failed to update game state: %w", err)
	}

	if err := s.hub.ToGame(g.ID, &CardPlaced{
		Side:    side,
		Card:    card,
		Placed:  res.Placed,
		Flipped: res.Flipped,
		State:   state,
	}); err != nil {
		log.Printf("failed to broadcast move for %q: %v", g.ID, err)
	}

	if status != conquest.Finished {
		return res, status, nil
	}

	if err := s.db.FinishGame(g.ID); err != nil {
		return nil, "", fmt.Errorf("failed to finish game: %w", err)
	}
	_, winner := gm.Winner()
	if err := s.hub.ToGame(g.ID, &GameEnd{
		Winner: winner,
		Home:   state.Board.Count(conquest.Home),
		Away:   state.Board.Count(conquest.Away),
	}); err != nil {
		log.Printf("failed to broadcast game end for %q: %v", g.ID, err)
	}

	return res, status, nil
}

// playComputer makes moves for the computer for as long as it's the
// computer's turn. Callers must hold the turn lock for the game.
func (s *Srv) playComputer(gID conquest.GameID) error {
	for {
		g, err := s.db.Game(gID)
		if err != nil {
			return fmt.Errorf("failed to load game: %w", err)
		}
		if g.Status != conquest.Playing {
			return nil
		}
		side := g.State.ActiveSide
		if g.State.SideOf(conquest.ComputerID) != side {
			return nil
		}

		pl, err := s.computer.Move(g.State.Clone(), side)
		if err != nil {
			return fmt.Errorf("computer failed to pick a move: %w", err)
		}
		if _, _, err := s.applyMove(g, side, pl); err != nil {
			return fmt.Errorf("computer move %+v failed: %w", pl, err)
		}
	}
}

func (s *Srv) serveData(w http.ResponseWriter, r *http.Request) error {
	g, err := s.loadGame(r)
	if err != nil {
		return err
	}

	u, err := s.loadUser(r)
	if err != nil {
		return err
	}
	var uID conquest.UserID
	if u != nil {
		uID = u.ID
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		log.Printf("failed to upgrade connection for %q: %v", g.ID, err)
		return nil
	}
	s.hub.Register(ws, g.ID, uID)
	return nil
}

func jsonResp(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("jsonResp: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (s *Srv) loadUser(r *http.Request) (*conquest.User, error) {
	c, err := r.Cookie("Authorization")
	if err == http.ErrNoCookie {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var uID conquest.UserID
	if err := s.sc.Decode("auth", c.Value, &uID); err != nil {
		// If we can't parse it, assume it's an old auth cookie and treat them as
		// not logged in.
		return nil, nil
	}

	u, err := s.db.User(uID)
	if errors.Is(err, conquest.ErrUserNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return u, nil
}

func (s *Srv) loadGame(r *http.Request) (*conquest.Game, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, httpErrorf(http.StatusBadRequest, "no game ID provided")
	}

	g, err := s.db.Game(conquest.GameID(id))
	if errors.Is(err, conquest.ErrGameNotFound) {
		return nil, httpErrorf(http.StatusNotFound, "game %q not found", id)
	} else if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return g, nil
}
