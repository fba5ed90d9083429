package ai

import (
	"math/rand"
	"testing"

	conquest "github.com/bcspragu/Conquest"
	"github.com/bcspragu/Conquest/cardgen"
	"github.com/bcspragu/Conquest/game"
	"github.com/google/go-cmp/cmp"
)

func card(top, right, bottom, left int) conquest.Card {
	return conquest.Card{Top: top, Right: right, Bottom: bottom, Left: left}
}

func TestGreedy_TakesTheCapture(t *testing.T) {
	b := conquest.NewBoard(conquest.Rows, conquest.Columns)
	// A weak Home card in the bottom right corner.
	weak := card(1, 1, 1, 1)
	b.Cells[8] = conquest.Cell{Card: &weak, Owner: conquest.Home}

	gs := &conquest.GameState{
		ActiveSide: conquest.Away,
		Board:      b,
		AwayHand: []conquest.Card{
			card(1, 1, 1, 1),
			// Only this card's bottom can beat the corner from above.
			card(1, 1, 5, 1),
		},
	}

	got, err := Greedy{}.Move(gs, conquest.Away)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	// Card 0 can't capture from anywhere, card 1 captures from cell 5.
	want := &conquest.Placement{Card: 1, Cell: 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected placement (-want +got)\n%s", diff)
	}
}

func TestGreedy_TieBreak(t *testing.T) {
	gs := &conquest.GameState{
		ActiveSide: conquest.Home,
		Board:      conquest.NewBoard(conquest.Rows, conquest.Columns),
		HomeHand:   []conquest.Card{card(1, 1, 1, 1), card(8, 8, 8, 8)},
	}

	got, err := Greedy{}.Move(gs, conquest.Home)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	// On an empty board every move scores the same.
	want := &conquest.Placement{Card: 0, Cell: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected placement (-want +got)\n%s", diff)
	}
}

func TestGreedy_NoMoves(t *testing.T) {
	gs := &conquest.GameState{
		ActiveSide: conquest.Home,
		Board:      conquest.NewBoard(conquest.Rows, conquest.Columns),
	}
	if _, err := (Greedy{}).Move(gs, conquest.Home); err == nil {
		t.Error("Move with an empty hand should fail")
	}
}

func TestScore_LeavesBoardAlone(t *testing.T) {
	b := conquest.NewBoard(conquest.Rows, conquest.Columns)
	weak := card(1, 1, 1, 1)
	b.Cells[4] = conquest.Cell{Card: &weak, Owner: conquest.Home}
	before := b.Clone()

	if got := Score(b, card(8, 8, 8, 8), 1, conquest.Away); got != 2 {
		t.Errorf("Score = %d, want 2", got)
	}
	if diff := cmp.Diff(before, b); diff != "" {
		t.Errorf("Score modified the board (-want +got)\n%s", diff)
	}
}

func TestGreedy_PlaysFullGames(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 20; i++ {
		g := game.New(cardgen.NewState(cardgen.Starter(r), r))
		out, err := g.Play(&game.Config{Home: Greedy{}, Away: Greedy{}})
		if err != nil {
			t.Fatalf("game %d: Play: %v", i, err)
		}
		if out.Home+out.Away != conquest.Size {
			t.Errorf("game %d: %d+%d owned cells, want %d", i, out.Home, out.Away, conquest.Size)
		}
	}
}
