package memdb

import (
	"errors"
	"testing"

	conquest "github.com/bcspragu/Conquest"
	"github.com/google/go-cmp/cmp"
)

func newGame(creator conquest.UserID) *conquest.Game {
	return &conquest.Game{
		CreatedBy: creator,
		State: &conquest.GameState{
			StartingSide: conquest.Home,
			ActiveSide:   conquest.Home,
			Board:        conquest.NewBoard(conquest.Rows, conquest.Columns),
			HomeHand:     []conquest.Card{{Top: 1, Right: 2, Bottom: 3, Left: 4}},
			AwayHand:     []conquest.Card{{Top: 4, Right: 3, Bottom: 2, Left: 1}},
			Home:         creator,
		},
	}
}

func TestUsers(t *testing.T) {
	db := New()

	uID, err := db.NewUser(&conquest.User{Name: "Alice"})
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if uID != "user_0" {
		t.Errorf("user ID = %q, want %q", uID, "user_0")
	}

	got, err := db.User(uID)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if diff := cmp.Diff(&conquest.User{ID: "user_0", Name: "Alice"}, got); diff != "" {
		t.Errorf("unexpected user (-want +got)\n%s", diff)
	}

	if _, err := db.User("user_9"); !errors.Is(err, conquest.ErrUserNotFound) {
		t.Errorf("User(missing) = %v, want %v", err, conquest.ErrUserNotFound)
	}
}

func TestGameLifecycle(t *testing.T) {
	db := New()
	alice, _ := db.NewUser(&conquest.User{Name: "Alice"})
	bob, _ := db.NewUser(&conquest.User{Name: "Bob"})

	in := newGame(alice)
	gID, err := db.NewGame(in)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	// Changing what we passed in shouldn't change what's stored.
	in.State.HomeHand[0].Top = 8

	pending, err := db.PendingGames()
	if err != nil {
		t.Fatalf("PendingGames: %v", err)
	}
	if diff := cmp.Diff([]conquest.GameID{gID}, pending); diff != "" {
		t.Errorf("unexpected pending games (-want +got)\n%s", diff)
	}

	if err := db.JoinGame(gID, alice); err == nil {
		t.Error("creator shouldn't be able to join their own game")
	}
	if err := db.JoinGame(gID, "user_9"); !errors.Is(err, conquest.ErrUserNotFound) {
		t.Errorf("JoinGame(missing user) = %v, want %v", err, conquest.ErrUserNotFound)
	}
	if err := db.JoinGame(gID, bob); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	var je *conquest.JoinError
	if err := db.JoinGame(gID, bob); !errors.As(err, &je) {
		t.Errorf("second JoinGame = %v, want a *JoinError", err)
	}

	got, err := db.Game(gID)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	want := newGame(alice)
	want.ID = gID
	want.Status = conquest.Playing
	want.State.Away = bob
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected game (-want +got)\n%s", diff)
	}

	if pending, _ := db.PendingGames(); len(pending) != 0 {
		t.Errorf("pending games = %v, want none", pending)
	}

	got.State.ActiveSide = conquest.Away
	if err := db.UpdateState(gID, got.State); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if err := db.FinishGame(gID); err != nil {
		t.Fatalf("FinishGame: %v", err)
	}

	final, err := db.Game(gID)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if final.Status != conquest.Finished {
		t.Errorf("status = %q, want %q", final.Status, conquest.Finished)
	}
	if final.State.ActiveSide != conquest.Away {
		t.Errorf("active side = %q, want %q", final.State.ActiveSide, conquest.Away)
	}
}

func TestMissingGame(t *testing.T) {
	db := New()
	if _, err := db.Game("game_0"); !errors.Is(err, conquest.ErrGameNotFound) {
		t.Errorf("Game = %v, want %v", err, conquest.ErrGameNotFound)
	}
	if err := db.UpdateState("game_0", &conquest.GameState{}); !errors.Is(err, conquest.ErrGameNotFound) {
		t.Errorf("UpdateState = %v, want %v", err, conquest.ErrGameNotFound)
	}
	if err := db.FinishGame("game_0"); !errors.Is(err, conquest.ErrGameNotFound) {
		t.Errorf("FinishGame = %v, want %v", err, conquest.ErrGameNotFound)
	}
}
