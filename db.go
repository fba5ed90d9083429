package conquest

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
)

var (
	ErrUserNotFound = errors.New("conquest: user not found")
	ErrGameNotFound = errors.New("conquest: game not found")
)

type UserID string
type GameID string

// ComputerID sits in the Away seat of games played against the server.
const ComputerID = UserID("computer")

type GameStatus string

const (
	// NoStatus is an error case.
	NoStatus = GameStatus("")
	// Game is waiting for an opponent.
	Pending = GameStatus("PENDING")
	// Game is in progress.
	Playing = GameStatus("PLAYING")
	// Game is over, the board is full.
	Finished = GameStatus("FINISHED")
)

type User struct {
	ID UserID `json:"id"`
	// Name is the name that gets displayed.
	Name string `json:"name"`
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	uc := *u
	return &uc
}

type Game struct {
	ID        GameID     `json:"id"`
	CreatedBy UserID     `json:"created_by"`
	Status    GameStatus `json:"status"`
	State     *GameState `json:"state"`
}

func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	gc := *g
	gc.State = g.State.Clone()
	return &gc
}

// GameState is everything needed to make the next move in a game.
type GameState struct {
	StartingSide Side   `json:"starting_side"`
	ActiveSide   Side   `json:"active_side"`
	Board        *Board `json:"board"`

	HomeHand []Card `json:"home_hand"`
	AwayHand []Card `json:"away_hand"`

	// Home and Away are the users in each seat. Away is empty until someone
	// joins the game.
	Home UserID `json:"home,omitempty"`
	Away UserID `json:"away,omitempty"`
}

// Hand returns the cards still held by the given side.
func (gs *GameState) Hand(s Side) []Card {
	switch s {
	case Home:
		return gs.HomeHand
	case Away:
		return gs.AwayHand
	}
	return nil
}

// SetHand replaces the cards held by the given side.
func (gs *GameState) SetHand(s Side, cards []Card) {
	switch s {
	case Home:
		gs.HomeHand = cards
	case Away:
		gs.AwayHand = cards
	}
}

// SideOf returns which seat the user is in, or NoSide if they aren't playing.
func (gs *GameState) SideOf(uID UserID) Side {
	switch {
	case uID == "":
		return NoSide
	case gs.Home == uID:
		return Home
	case gs.Away == uID:
		return Away
	}
	return NoSide
}

func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	gsc := *gs
	gsc.Board = gs.Board.Clone()
	gsc.HomeHand = cloneCards(gs.HomeHand)
	gsc.AwayHand = cloneCards(gs.AwayHand)
	return &gsc
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// StatusFor returns the status a newly created game starts with. Games created
// with both seats filled skip straight to Playing.
func StatusFor(g *Game) GameStatus {
	if g.State != nil && g.State.Away != "" {
		return Playing
	}
	return Pending
}

type DB interface {
	NewUser(*User) (UserID, error)
	User(UserID) (*User, error)

	NewGame(*Game) (GameID, error)
	Game(GameID) (*Game, error)
	PendingGames() ([]GameID, error)
	// JoinGame seats the user as Away and starts the game.
	JoinGame(GameID, UserID) error
	UpdateState(GameID, *GameState) error
	FinishGame(GameID) error
}

// JoinError is returned when a user can't take the open seat in a game.
type JoinError struct {
	GameID GameID
	Reason string
}

func (e *JoinError) Error() string {
	return "conquest: can't join game " + string(e.GameID) + ": " + e.Reason
}

// CanJoin checks that the user can take the open Away seat in the game.
func CanJoin(g *Game, uID UserID) error {
	switch {
	case g.Status != Pending:
		return &JoinError{GameID: g.ID, Reason: "game isn't waiting for players"}
	case g.State == nil:
		return &JoinError{GameID: g.ID, Reason: "game has no state"}
	case g.CreatedBy == uID || g.State.Home == uID:
		return &JoinError{GameID: g.ID, Reason: "can't play against yourself"}
	case g.State.Away != "":
		return &JoinError{GameID: g.ID, Reason: "game is full"}
	}
	return nil
}

func RandomGameID(r *rand.Rand) GameID {
	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		buf.WriteString(randomWord(r))
	}
	return GameID(buf.String())
}

var letters = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func RandomUserID(r *rand.Rand) UserID {
	b := make([]byte, 64)
	for i := range b {
		b[i] = letters[r.Intn(len(letters))]
	}
	return UserID(b)
}

func randomWord(r *rand.Rand) string {
	return titleWord(Words[r.Intn(len(Words))])
}

// titleWord capitalizes each underscore-separated part of w and joins them.
func titleWord(w string) string {
	var buf strings.Builder
	for _, p := range strings.Split(w, "_") {
		buf.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return buf.String()
}
