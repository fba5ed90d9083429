// Package term plays Conquest on a terminal.
package term

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	conquest "github.com/bcspragu/Conquest"
	"github.com/olekukonko/tablewriter"
)

// ErrNoInput is returned when the input runs out before a valid move is made.
var ErrNoInput = errors.New("term: no more input")

func sideColor(s conquest.Side) tablewriter.Colors {
	switch s {
	case conquest.Home:
		return tablewriter.Colors{tablewriter.FgBlueColor}
	case conquest.Away:
		return tablewriter.Colors{tablewriter.FgHiRedColor}
	}
	return tablewriter.Colors{}
}

// PrintBoard writes the board as a grid. Cards are shown as top/right/bottom/left
// in their owner's color, and empty cells show the index to play them with.
func PrintBoard(w io.Writer, b *conquest.Board) {
	table := tablewriter.NewWriter(w)
	table.SetRowLine(true)
	table.SetAlignment(tablewriter.ALIGN_CENTER)

	for row := 0; row < b.Rows; row++ {
		var (
			cells  []string
			colors []tablewriter.Colors
		)
		for col := 0; col < b.Columns; col++ {
			idx := b.Index(row, col)
			c := b.Cells[idx]
			if c.Empty() {
				cells = append(cells, "("+strconv.Itoa(idx)+")")
				colors = append(colors, tablewriter.Colors{})
				continue
			}
			cells = append(cells, c.Card.String())
			colors = append(colors, sideColor(c.Owner))
		}
		table.Rich(cells, colors)
	}

	table.Render()
}

// PrintHand writes out the cards in a hand, along with the index to play each
// one with.
func PrintHand(w io.Writer, hand []conquest.Card) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Top", "Right", "Bottom", "Left"})

	for i, c := range hand {
		table.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(c.Top),
			strconv.Itoa(c.Right),
			strconv.Itoa(c.Bottom),
			strconv.Itoa(c.Left),
		})
	}

	table.Render()
}

// PrintScore writes how many cells each side holds.
func PrintScore(w io.Writer, b *conquest.Board) {
	fmt.Fprintf(w, "Home %d - %d Away\n", b.Count(conquest.Home), b.Count(conquest.Away))
}

// Human asks the user on the terminal which card to play and where. Invalid
// moves are reported and the user is asked again.
type Human struct {
	// In is where the user's moves are read from.
	In io.Reader
	// Out is where the board and prompts are written out to.
	Out io.Writer

	sc *bufio.Scanner
}

func (h *Human) Move(gs *conquest.GameState, side conquest.Side) (*conquest.Placement, error) {
	if h.sc == nil {
		h.sc = bufio.NewScanner(h.In)
	}

	hand := gs.Hand(side)
	PrintBoard(h.Out, gs.Board)
	PrintHand(h.Out, hand)

	for {
		fmt.Fprintf(h.Out, "%s, enter a card and a cell [ex. '0 4']: ", side)
		if !h.sc.Scan() {
			if err := h.sc.Err(); err != nil {
				return nil, fmt.Errorf("scanner error: %w", err)
			}
			return nil, ErrNoInput
		}

		pl, err := parsePlacement(h.sc.Text(), gs.Board, hand)
		if err != nil {
			fmt.Fprintf(h.Out, "%v\n", err)
			continue
		}
		return pl, nil
	}
}

func parsePlacement(in string, b *conquest.Board, hand []conquest.Card) (*conquest.Placement, error) {
	var pl conquest.Placement
	if _, err := fmt.Sscan(in, &pl.Card, &pl.Cell); err != nil {
		return nil, fmt.Errorf("couldn't read %q as a card and a cell", in)
	}
	if pl.Card < 0 || pl.Card >= len(hand) {
		return nil, fmt.Errorf("card must be between 0 and %d", len(hand)-1)
	}
	if !b.InBounds(pl.Cell) {
		return nil, fmt.Errorf("cell must be between 0 and %d", len(b.Cells)-1)
	}
	if !b.Cells[pl.Cell].Empty() {
		return nil, fmt.Errorf("cell %d already has a card in it", pl.Cell)
	}
	return &pl, nil
}
