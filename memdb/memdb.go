package memdb

import (
	"fmt"
	"sort"
	"sync"

	conquest "github.com/bcspragu/Conquest"
)

type idNamespace string

const (
	gameID = idNamespace("game")
	userID = idNamespace("user")
)

// DB is an in-memory conquest.DB. Everything going in or out is cloned, so
// callers can't modify stored values out from under it.
type DB struct {
	mu    sync.Mutex
	ids   map[idNamespace]int
	games map[conquest.GameID]*conquest.Game
	users map[conquest.UserID]*conquest.User
}

func New() *DB {
	return &DB{
		ids:   make(map[idNamespace]int),
		games: make(map[conquest.GameID]*conquest.Game),
		users: make(map[conquest.UserID]*conquest.User),
	}
}

func (db *DB) NewGame(g *conquest.Game) (conquest.GameID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	gID := conquest.GameID(db.newID(gameID))

	gc := g.Clone()
	gc.ID = gID
	gc.Status = conquest.StatusFor(g)
	db.games[gID] = gc

	return gID, nil
}

func (db *DB) Game(gID conquest.GameID) (*conquest.Game, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.games[gID]
	if !ok {
		return nil, conquest.ErrGameNotFound
	}

	return g.Clone(), nil
}

func (db *DB) NewUser(u *conquest.User) (conquest.UserID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	uID := conquest.UserID(db.newID(userID))

	uc := u.Clone()
	uc.ID = uID
	db.users[uID] = uc

	return uID, nil
}

func (db *DB) User(uID conquest.UserID) (*conquest.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[uID]
	if !ok {
		return nil, conquest.ErrUserNotFound
	}

	return u.Clone(), nil
}

// PendingGames returns the IDs of games waiting for an opponent, sorted so
// results are stable.
func (db *DB) PendingGames() ([]conquest.GameID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var pending []conquest.GameID
	for _, g := range db.games {
		if g.Status == conquest.Pending {
			pending = append(pending, g.ID)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i] < pending[j]
	})
	return pending, nil
}

func (db *DB) JoinGame(gID conquest.GameID, uID conquest.UserID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[uID]; !ok {
		return fmt.Errorf("user %q: %w", uID, conquest.ErrUserNotFound)
	}

	return db.updateGame(gID, func(g *conquest.Game) error {
		if err := conquest.CanJoin(g, uID); err != nil {
			return err
		}
		g.State.Away = uID
		g.Status = conquest.Playing
		return nil
	})
}

func (db *DB) UpdateState(gID conquest.GameID, gs *conquest.GameState) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.updateGame(gID, func(g *conquest.Game) error {
		g.State = gs.Clone()
		return nil
	})
}

func (db *DB) FinishGame(gID conquest.GameID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.updateGame(gID, func(g *conquest.Game) error {
		g.Status = conquest.Finished
		return nil
	})
}

func (db *DB) updateGame(gID conquest.GameID, update func(*conquest.Game) error) error {
	g, ok := db.games[gID]
	if !ok {
		return conquest.ErrGameNotFound
	}
	return update(g)
}

func (db *DB) newID(ns idNamespace) string {
	idx := db.ids[ns]
	id := fmt.Sprintf("%s_%d", ns, idx)
	db.ids[ns]++
	return id
}
