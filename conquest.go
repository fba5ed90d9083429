package conquest

import "fmt"

const (
	// Rows is the number of rows of cells on a Conquest board.
	Rows = 3
	// Columns is the number of columns of cells on a Conquest board.
	Columns = 3
	// Size is the total number of cells on a Conquest board.
	Size = Rows * Columns

	// HandSize is how many cards each side is dealt at the start of a game.
	HandSize = 5

	// MinAttack and MaxAttack bound the value on any face of a card.
	MinAttack = 1
	MaxAttack = 8
)

// Player picks the next placement for a side. Implementations get a copy of
// the state and are free to modify it.
type Player interface {
	Move(*GameState, Side) (*Placement, error)
}

// Placement is a choice of card from the active hand and a cell to put it in.
type Placement struct {
	// Card is an index into the hand of the side making the move.
	Card int `json:"card"`
	// Cell is a row-major index into the board.
	Cell int `json:"cell"`
}

// Card is a single game card. Once dealt, a card never changes; flipping
// changes who owns the cell it sits in, not the card.
type Card struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`

	// Color is purely cosmetic, a "#rrggbb" string.
	Color string `json:"color"`
}

// Attack returns the value on the given face of the card.
func (c Card) Attack(f Face) int {
	switch f {
	case TopFace:
		return c.Top
	case RightFace:
		return c.Right
	case BottomFace:
		return c.Bottom
	case LeftFace:
		return c.Left
	}
	return 0
}

func (c Card) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", c.Top, c.Right, c.Bottom, c.Left)
}

// Face is one of the four edges of a card.
type Face int

const (
	TopFace Face = iota
	RightFace
	BottomFace
	LeftFace
)

func (f Face) String() string {
	switch f {
	case TopFace:
		return "Top"
	case RightFace:
		return "Right"
	case BottomFace:
		return "Bottom"
	case LeftFace:
		return "Left"
	}
	return ""
}

// Side is who owns a cell, or whose turn it is.
type Side int

const (
	// NoSide means the cell is empty, or is an error case everywhere else.
	NoSide Side = iota
	Home
	Away
)

func (s Side) String() string {
	switch s {
	case Home:
		return "Home"
	case Away:
		return "Away"
	}
	return ""
}

// MarshalText encodes the side as "home" or "away", and NoSide as "".
func (s Side) MarshalText() ([]byte, error) {
	switch s {
	case NoSide:
		return []byte{}, nil
	case Home:
		return []byte("home"), nil
	case Away:
		return []byte("away"), nil
	}
	return nil, fmt.Errorf("unknown side %d", int(s))
}

func (s *Side) UnmarshalText(dat []byte) error {
	switch string(dat) {
	case "":
		*s = NoSide
	case "home":
		*s = Home
	case "away":
		*s = Away
	default:
		return fmt.Errorf("unknown side %q", string(dat))
	}
	return nil
}

// Other returns the opposing side. The opponent of NoSide is NoSide.
func (s Side) Other() Side {
	switch s {
	case Home:
		return Away
	case Away:
		return Home
	}
	return NoSide
}

// Cell is a single square on the board. A nil Card means the cell is empty,
// and an empty cell never has an Owner.
type Cell struct {
	Card  *Card `json:"card,omitempty"`
	Owner Side  `json:"owner,omitempty"`
}

// Empty reports whether there's no card in the cell.
func (c Cell) Empty() bool {
	return c.Card == nil
}

// Board contains the cells of a game. Cells are stored in row-major order, so
// the zeroth cell is the top-left, the Columns-1th is the top-right, and the
// last cell is the bottom-right.
type Board struct {
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Cells   []Cell `json:"cells"`
}

// NewBoard returns an empty board of the given size.
func NewBoard(rows, cols int) *Board {
	return &Board{
		Rows:    rows,
		Columns: cols,
		Cells:   make([]Cell, rows*cols),
	}
}

// Index converts a (row, col) pair into an index into b.Cells.
func (b *Board) Index(row, col int) int {
	return row*b.Columns + col
}

// Coord is the inverse of Index.
func (b *Board) Coord(idx int) (row, col int) {
	return idx / b.Columns, idx % b.Columns
}

// InBounds reports whether idx refers to a cell on the board.
func (b *Board) InBounds(idx int) bool {
	return idx >= 0 && idx < len(b.Cells)
}

// Full reports whether every cell has a card in it.
func (b *Board) Full() bool {
	for _, c := range b.Cells {
		if c.Empty() {
			return false
		}
	}
	return true
}

// Empty returns the indices of all the cells without a card, in order.
func (b *Board) Empty() []int {
	var out []int
	for i, c := range b.Cells {
		if c.Empty() {
			out = append(out, i)
		}
	}
	return out
}

// Count returns how many cells are owned by the given side.
func (b *Board) Count(s Side) int {
	n := 0
	for _, c := range b.Cells {
		if c.Card != nil && c.Owner == s {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the board. Card values are copied too, so the
// clone shares nothing with the original.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	cells := make([]Cell, len(b.Cells))
	for i, c := range b.Cells {
		cells[i].Owner = c.Owner
		if c.Card != nil {
			cd := *c.Card
			cells[i].Card = &cd
		}
	}
	return &Board{
		Rows:    b.Rows,
		Columns: b.Columns,
		Cells:   cells,
	}
}

// Direction is one of the four ways a placed card attacks. Up is toward row
// zero, Left is toward column zero.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists every direction in the order they're resolved.
var Directions = [...]Direction{Up, Right, Down, Left}

// Delta returns the row and column step for the direction.
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	}
	return 0, 0
}

// Attacker is the face of the placed card that points in direction d.
func (d Direction) Attacker() Face {
	switch d {
	case Up:
		return TopFace
	case Right:
		return RightFace
	case Down:
		return BottomFace
	default:
		return LeftFace
	}
}

// Defender is the face of a card in direction d that points back at the
// placed card.
func (d Direction) Defender() Face {
	switch d {
	case Up:
		return BottomFace
	case Right:
		return LeftFace
	case Down:
		return TopFace
	default:
		return RightFace
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	}
	return ""
}
