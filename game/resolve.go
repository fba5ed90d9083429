package game

import (
	conquest "github.com/bcspragu/Conquest"
)

// Resolve flips the cells captured by the card that was just placed at idx.
// The caller must have already written the card and its owner into the cell.
// If the cell has no card or no owner, Resolve does nothing.
//
// Each direction is walked from the placed cell out to the edge of the board.
// The placed card's attack on that side is whittled down by the defending
// face of every card it passes, and each card passed while some attack is
// left over changes hands. An empty cell ends the walk in that direction, a
// card that holds does not.
func Resolve(b *conquest.Board, idx int) {
	walk(b, idx, func(i int, owner conquest.Side) {
		b.Cells[i].Owner = owner
	})
}

// Flips returns the cells that Resolve would hand over to the owner of the
// card at idx, without modifying the board. Cells come back grouped by
// direction in conquest.Directions order, nearest first.
func Flips(b *conquest.Board, idx int) []int {
	var out []int
	walk(b, idx, func(i int, _ conquest.Side) {
		out = append(out, i)
	})
	return out
}

func walk(b *conquest.Board, idx int, flip func(int, conquest.Side)) {
	if !b.InBounds(idx) {
		return
	}
	placed := b.Cells[idx]
	if placed.Card == nil || placed.Owner == conquest.NoSide {
		return
	}

	row, col := b.Coord(idx)
	for _, d := range conquest.Directions {
		dr, dc := d.Delta()
		remaining := placed.Card.Attack(d.Attacker())
		for r, c := row+dr, col+dc; r >= 0 && r < b.Rows && c >= 0 && c < b.Columns; r, c = r+dr, c+dc {
			i := b.Index(r, c)
			cell := b.Cells[i]
			if cell.Card == nil {
				break
			}
			remaining -= cell.Card.Attack(d.Defender())
			if remaining > 0 {
				flip(i, placed.Owner)
			}
		}
	}
}
