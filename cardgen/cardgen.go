// Package cardgen deals random cards and sets up new games.
package cardgen

import (
	"fmt"
	"math/rand"

	conquest "github.com/bcspragu/Conquest"
)

// NewCard returns a card with every face picked uniformly from
// [MinAttack, MaxAttack], and a light color so text stays readable on it.
func NewCard(r *rand.Rand) conquest.Card {
	return conquest.Card{
		Top:    attack(r),
		Right:  attack(r),
		Bottom: attack(r),
		Left:   attack(r),
		Color:  fmt.Sprintf("#%02x%02x%02x", channel(r), channel(r), channel(r)),
	}
}

func attack(r *rand.Rand) int {
	return conquest.MinAttack + r.Intn(conquest.MaxAttack-conquest.MinAttack+1)
}

func channel(r *rand.Rand) int {
	return 128 + r.Intn(128)
}

// NewHand deals n cards.
func NewHand(r *rand.Rand, n int) []conquest.Card {
	cards := make([]conquest.Card, n)
	for i := range cards {
		cards[i] = NewCard(r)
	}
	return cards
}

// NewState returns the state for a new game on an empty board, with both
// sides holding a full hand and starter to move.
func NewState(starter conquest.Side, r *rand.Rand) *conquest.GameState {
	return &conquest.GameState{
		StartingSide: starter,
		ActiveSide:   starter,
		Board:        conquest.NewBoard(conquest.Rows, conquest.Columns),
		HomeHand:     NewHand(r, conquest.HandSize),
		AwayHand:     NewHand(r, conquest.HandSize),
	}
}

// Starter picks which side goes first.
func Starter(r *rand.Rand) conquest.Side {
	if r.Intn(2) == 0 {
		return conquest.Away
	}
	return conquest.Home
}
