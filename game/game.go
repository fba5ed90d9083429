package game

import (
	"errors"
	"fmt"

	conquest "github.com/bcspragu/Conquest"
)

var (
	ErrGameOver    = errors.New("game: game is over")
	ErrNotYourTurn = errors.New("game: not your turn")
	ErrBadCard     = errors.New("game: no such card in hand")
	ErrBadCell     = errors.New("game: no such cell")
	ErrCellTaken   = errors.New("game: cell already has a card")
)

// Game applies moves to a game of Conquest. It supports two modes of
// operation:
// - Play() mode: Plays the whole game out at once, asking the Player for each
// side what to do.
// - Move() mode: Plays out a single move, through the Move() function. Will
// reject moves made out of turn, so a *Game can be built straight from a
// stored state for each request.
type Game struct {
	state *conquest.GameState
}

// Config holds the players for Play().
type Config struct {
	Home conquest.Player
	Away conquest.Player
}

// New wraps the given state. The state is modified in place by Move.
func New(state *conquest.GameState) *Game {
	return &Game{state: state}
}

// State returns the underlying game state.
func (g *Game) State() *conquest.GameState {
	return g.state
}

// Move is a single card placement by one side.
type Move struct {
	Side conquest.Side
	// Card is an index into the side's hand.
	Card int
	// Cell is a row-major index into the board.
	Cell int
}

// Result describes what a move did to the board. Flipped only lists cells
// that changed hands.
type Result struct {
	Placed  int   `json:"placed"`
	Flipped []int `json:"flipped"`
}

type Outcome struct {
	Winner conquest.Side
	Home   int
	Away   int
}

// Move places a card for mv.Side, resolves the captures it makes and passes
// the turn to the other side.
func (g *Game) Move(mv *Move) (*conquest.GameState, conquest.GameStatus, *Result, error) {
	if over, _ := g.Winner(); over {
		return nil, "", nil, ErrGameOver
	}
	if mv.Side != g.state.ActiveSide {
		return nil, "", nil, fmt.Errorf("%q can't move while %q is active: %w", mv.Side, g.state.ActiveSide, ErrNotYourTurn)
	}

	hand := g.state.Hand(mv.Side)
	if mv.Card < 0 || mv.Card >= len(hand) {
		return nil, "", nil, fmt.Errorf("card %d, hand has %d: %w", mv.Card, len(hand), ErrBadCard)
	}

	b := g.state.Board
	if !b.InBounds(mv.Cell) {
		return nil, "", nil, fmt.Errorf("cell %d: %w", mv.Cell, ErrBadCell)
	}
	if !b.Cells[mv.Cell].Empty() {
		return nil, "", nil, fmt.Errorf("cell %d: %w", mv.Cell, ErrCellTaken)
	}

	card := hand[mv.Card]
	b.Cells[mv.Cell] = conquest.Cell{Card: &card, Owner: mv.Side}
	g.state.SetHand(mv.Side, removeCard(hand, mv.Card))

	res := &Result{Placed: mv.Cell}
	for _, idx := range Flips(b, mv.Cell) {
		if b.Cells[idx].Owner != mv.Side {
			res.Flipped = append(res.Flipped, idx)
		}
	}
	Resolve(b, mv.Cell)

	g.state.ActiveSide = mv.Side.Other()

	status := conquest.Playing
	if over, _ := g.Winner(); over {
		status = conquest.Finished
	}

	return g.state, status, res, nil
}

func removeCard(hand []conquest.Card, idx int) []conquest.Card {
	out := make([]conquest.Card, 0, len(hand)-1)
	out = append(out, hand[:idx]...)
	return append(out, hand[idx+1:]...)
}

// Winner reports whether the game is over, and if so, which side owns more of
// the board. A tie returns NoSide.
func (g *Game) Winner() (bool, conquest.Side) {
	b := g.state.Board
	if !b.Full() {
		return false, conquest.NoSide
	}

	home, away := b.Count(conquest.Home), b.Count(conquest.Away)
	switch {
	case home > away:
		return true, conquest.Home
	case away > home:
		return true, conquest.Away
	}
	return true, conquest.NoSide
}

// Play asks each side's player for moves until the board is full.
func (g *Game) Play(cfg *Config) (*Outcome, error) {
	if cfg.Home == nil {
		return nil, errors.New("Home player cannot be nil")
	}
	if cfg.Away == nil {
		return nil, errors.New("Away player cannot be nil")
	}

	for {
		if over, winner := g.Winner(); over {
			return &Outcome{
				Winner: winner,
				Home:   g.state.Board.Count(conquest.Home),
				Away:   g.state.Board.Count(conquest.Away),
			}, nil
		}

		side := g.state.ActiveSide
		p := cfg.Home
		if side == conquest.Away {
			p = cfg.Away
		}

		pl, err := p.Move(g.state.Clone(), side)
		if err != nil {
			return nil, fmt.Errorf("Move on %q: %w", side, err)
		}
		if _, _, _, err := g.Move(&Move{Side: side, Card: pl.Card, Cell: pl.Cell}); err != nil {
			return nil, fmt.Errorf("bad move from %q: %w", side, err)
		}
	}
}
