package sqldb

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	conquest "github.com/bcspragu/Conquest"
	"github.com/bcspragu/Conquest/cardgen"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "conquest.db"), rand.NewSource(0))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUsers(t *testing.T) {
	db := setup(t)

	uID, err := db.NewUser(&conquest.User{Name: "Alice"})
	require.NoError(t, err)
	require.Len(t, uID, 64)

	got, err := db.User(uID)
	require.NoError(t, err)
	require.Equal(t, &conquest.User{ID: uID, Name: "Alice"}, got)

	_, err = db.User("nobody")
	require.ErrorIs(t, err, conquest.ErrUserNotFound)
}

func TestGameLifecycle(t *testing.T) {
	db := setup(t)
	r := rand.New(rand.NewSource(0))

	alice, err := db.NewUser(&conquest.User{Name: "Alice"})
	require.NoError(t, err)
	bob, err := db.NewUser(&conquest.User{Name: "Bob"})
	require.NoError(t, err)

	state := cardgen.NewState(conquest.Home, r)
	state.Home = alice
	gID, err := db.NewGame(&conquest.Game{CreatedBy: alice, State: state})
	require.NoError(t, err)
	require.NotEmpty(t, gID)

	pending, err := db.PendingGames()
	require.NoError(t, err)
	require.Equal(t, []conquest.GameID{gID}, pending)

	var je *conquest.JoinError
	require.ErrorAs(t, db.JoinGame(gID, alice), &je)
	require.ErrorIs(t, db.JoinGame(gID, "nobody"), conquest.ErrUserNotFound)
	require.ErrorIs(t, db.JoinGame("NoSuchGame", bob), conquest.ErrGameNotFound)
	require.NoError(t, db.JoinGame(gID, bob))
	require.ErrorAs(t, db.JoinGame(gID, bob), &je)

	got, err := db.Game(gID)
	require.NoError(t, err)

	want := &conquest.Game{
		ID:        gID,
		CreatedBy: alice,
		Status:    conquest.Playing,
		State:     state.Clone(),
	}
	want.State.Away = bob
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected game (-want +got)\n%s", diff)
	}

	pending, err = db.PendingGames()
	require.NoError(t, err)
	require.Empty(t, pending)

	// Play a card and store the result.
	c := got.State.HomeHand[0]
	got.State.Board.Cells[4] = conquest.Cell{Card: &c, Owner: conquest.Home}
	got.State.HomeHand = got.State.HomeHand[1:]
	got.State.ActiveSide = conquest.Away
	require.NoError(t, db.UpdateState(gID, got.State))
	require.NoError(t, db.FinishGame(gID))

	final, err := db.Game(gID)
	require.NoError(t, err)
	require.Equal(t, conquest.Finished, final.Status)
	if diff := cmp.Diff(got.State, final.State); diff != "" {
		t.Errorf("unexpected stored state (-want +got)\n%s", diff)
	}
}

func TestMissingGame(t *testing.T) {
	db := setup(t)

	_, err := db.Game("NoSuchGame")
	require.ErrorIs(t, err, conquest.ErrGameNotFound)
	require.ErrorIs(t, db.UpdateState("NoSuchGame", &conquest.GameState{}), conquest.ErrGameNotFound)
	require.ErrorIs(t, db.FinishGame("NoSuchGame"), conquest.ErrGameNotFound)
}

func TestClosed(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "conquest.db"), rand.NewSource(0))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	// Closing twice is fine.
	require.NoError(t, db.Close())

	_, err = db.User("anyone")
	require.True(t, errors.Is(err, errDBClosed), "User after Close = %v", err)
}
