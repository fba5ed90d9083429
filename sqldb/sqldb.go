package sqldb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	conquest "github.com/bcspragu/Conquest"
	"github.com/mattn/go-sqlite3"
)

var errDBClosed = errors.New("sqldb: database is closed")

// How many times we'll pick a new random ID if the one we picked is taken.
const maxIDAttempts = 5

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	created_by TEXT NOT NULL REFERENCES users(id),
	status TEXT NOT NULL,
	state BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS games_status ON games (status, created_at);
`

// DB implements the Conquest database API, backed by a SQLite database.
// NOTE: Since the database doesn't support concurrent writers, we don't
// actually hold the *sql.DB in this struct, we force all callers to get a
// handle via channels.
type DB struct {
	dbChan   chan func(*sql.DB)
	doneChan chan struct{}
	closed   chan struct{}
	once     sync.Once
	r        *rand.Rand
}

// New creates a new *DB that is stored on disk at the given filename, and
// creates any missing tables.
func New(fn string, src rand.Source) (*DB, error) {
	sdb, err := sql.Open("sqlite3", fn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sdb.SetMaxOpenConns(1)
	if _, err := sdb.Exec(schema); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	db := &DB{
		dbChan:   make(chan func(*sql.DB)),
		doneChan: make(chan struct{}),
		closed:   make(chan struct{}),
		r:        rand.New(src),
	}
	go db.run(sdb)
	return db, nil
}

// run handles all database calls, and ensures that only one thing is happening
// against the database at a time.
func (s *DB) run(sdb *sql.DB) {
	defer close(s.closed)
	for {
		select {
		case dbFn := <-s.dbChan:
			dbFn(sdb)
		case <-s.doneChan:
			sdb.Close()
			return
		}
	}
}

// do runs fn on the database goroutine and waits for it to finish.
func (s *DB) do(fn func(*sql.DB) error) error {
	errC := make(chan error, 1)
	select {
	case s.dbChan <- func(sdb *sql.DB) { errC <- fn(sdb) }:
	case <-s.doneChan:
		return errDBClosed
	}
	return <-errC
}

func (s *DB) Close() error {
	s.once.Do(func() {
		close(s.doneChan)
	})
	<-s.closed
	return nil
}

func (s *DB) NewUser(u *conquest.User) (conquest.UserID, error) {
	var uID conquest.UserID
	err := s.do(func(sdb *sql.DB) error {
		return s.withNewID(func() error {
			uID = conquest.RandomUserID(s.r)
			_, err := sdb.Exec(`INSERT INTO users (id, name) VALUES (?, ?)`, uID, u.Name)
			return err
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return uID, nil
}

func (s *DB) User(uID conquest.UserID) (*conquest.User, error) {
	u := &conquest.User{}
	err := s.do(func(sdb *sql.DB) error {
		return sdb.QueryRow(`SELECT id, name FROM users WHERE id = ?`, uID).Scan(&u.ID, &u.Name)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, conquest.ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (s *DB) NewGame(g *conquest.Game) (conquest.GameID, error) {
	state, err := json.Marshal(g.State)
	if err != nil {
		return "", fmt.Errorf("failed to encode game state: %w", err)
	}

	var gID conquest.GameID
	err = s.do(func(sdb *sql.DB) error {
		return s.withNewID(func() error {
			gID = conquest.RandomGameID(s.r)
			_, err := sdb.Exec(`INSERT INTO games (id, created_by, status, state) VALUES (?, ?, ?, ?)`,
				gID, g.CreatedBy, conquest.StatusFor(g), state)
			return err
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return gID, nil
}

func (s *DB) Game(gID conquest.GameID) (*conquest.Game, error) {
	var g *conquest.Game
	err := s.do(func(sdb *sql.DB) error {
		var err error
		g, err = game(sdb, gID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

type queryer interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func game(q queryer, gID conquest.GameID) (*conquest.Game, error) {
	var (
		g     conquest.Game
		state []byte
	)
	err := q.QueryRow(`SELECT id, created_by, status, state FROM games WHERE id = ?`, gID).
		Scan(&g.ID, &g.CreatedBy, &g.Status, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, conquest.ErrGameNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to load game %q: %w", gID, err)
	}

	if err := json.Unmarshal(state, &g.State); err != nil {
		return nil, fmt.Errorf("failed to decode state of game %q: %w", gID, err)
	}
	return &g, nil
}

func (s *DB) PendingGames() ([]conquest.GameID, error) {
	var gIDs []conquest.GameID
	err := s.do(func(sdb *sql.DB) error {
		rows, err := sdb.Query(`SELECT id FROM games WHERE status = ? ORDER BY created_at, id`, conquest.Pending)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var gID conquest.GameID
			if err := rows.Scan(&gID); err != nil {
				return err
			}
			gIDs = append(gIDs, gID)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load pending games: %w", err)
	}
	return gIDs, nil
}

func (s *DB) JoinGame(gID conquest.GameID, uID conquest.UserID) error {
	return s.do(func(sdb *sql.DB) error {
		tx, err := sdb.Begin()
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}
		defer tx.Rollback()

		var found int
		err = tx.QueryRow(`SELECT COUNT(*) FROM users WHERE id = ?`, uID).Scan(&found)
		if err != nil {
			return fmt.Errorf("failed to look up user: %w", err)
		}
		if found == 0 {
			return fmt.Errorf("user %q: %w", uID, conquest.ErrUserNotFound)
		}

		g, err := game(tx, gID)
		if err != nil {
			return err
		}
		if err := conquest.CanJoin(g, uID); err != nil {
			return err
		}
		g.State.Away = uID

		state, err := json.Marshal(g.State)
		if err != nil {
			return fmt.Errorf("failed to encode game state: %w", err)
		}
		if _, err := tx.Exec(`UPDATE games SET status = ?, state = ? WHERE id = ?`, conquest.Playing, state, gID); err != nil {
			return fmt.Errorf("failed to update game: %w", err)
		}
		return tx.Commit()
	})
}

func (s *DB) UpdateState(gID conquest.GameID, gs *conquest.GameState) error {
	state, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to encode game state: %w", err)
	}
	return s.update(gID, `UPDATE games SET state = ? WHERE id = ?`, state, gID)
}

func (s *DB) FinishGame(gID conquest.GameID) error {
	return s.update(gID, `UPDATE games SET status = ? WHERE id = ?`, conquest.Finished, gID)
}

func (s *DB) update(gID conquest.GameID, query string, args ...interface{}) error {
	return s.do(func(sdb *sql.DB) error {
		res, err := sdb.Exec(query, args...)
		if err != nil {
			return fmt.Errorf("failed to update game %q: %w", gID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count updated rows: %w", err)
		}
		if n == 0 {
			return conquest.ErrGameNotFound
		}
		return nil
	})
}

// withNewID runs insert until it doesn't fail on a primary key collision.
func (s *DB) withNewID(insert func() error) error {
	var err error
	for i := 0; i < maxIDAttempts; i++ {
		err = insert()
		if !isPrimaryKeyConflict(err) {
			return err
		}
	}
	return fmt.Errorf("no free ID after %d attempts: %w", maxIDAttempts, err)
}

func isPrimaryKeyConflict(err error) bool {
	var sErr sqlite3.Error
	if !errors.As(err, &sErr) {
		return false
	}
	return sErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
