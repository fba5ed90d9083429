// Package ai contains a computer opponent for Conquest.
package ai

import (
	"errors"

	conquest "github.com/bcspragu/Conquest"
	"github.com/bcspragu/Conquest/game"
)

// Greedy plays whichever card and cell leaves it the furthest ahead on the
// board right after the move. It doesn't look at what the opponent could do
// next. Ties go to the lowest card index, then the lowest cell index.
type Greedy struct{}

func (Greedy) Move(gs *conquest.GameState, s conquest.Side) (*conquest.Placement, error) {
	hand := gs.Hand(s)
	if len(hand) == 0 {
		return nil, errors.New("no cards left in hand")
	}
	empty := gs.Board.Empty()
	if len(empty) == 0 {
		return nil, errors.New("no empty cells left")
	}

	var (
		best      *conquest.Placement
		bestScore int
	)
	for ci := range hand {
		for _, cell := range empty {
			score := Score(gs.Board, hand[ci], cell, s)
			if best == nil || score > bestScore {
				best = &conquest.Placement{Card: ci, Cell: cell}
				bestScore = score
			}
		}
	}
	return best, nil
}

// Score returns how many more cells s would own than its opponent after
// putting c at idx.
func Score(b *conquest.Board, c conquest.Card, idx int, s conquest.Side) int {
	bc := b.Clone()
	bc.Cells[idx] = conquest.Cell{Card: &c, Owner: s}
	game.Resolve(bc, idx)
	return bc.Count(s) - bc.Count(s.Other())
}
