package term

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	conquest "github.com/bcspragu/Conquest"
	"github.com/google/go-cmp/cmp"
)

func testState() *conquest.GameState {
	b := conquest.NewBoard(conquest.Rows, conquest.Columns)
	b.Cells[4] = conquest.Cell{
		Card:  &conquest.Card{Top: 1, Right: 2, Bottom: 3, Left: 4},
		Owner: conquest.Away,
	}
	return &conquest.GameState{
		StartingSide: conquest.Home,
		ActiveSide:   conquest.Home,
		Board:        b,
		HomeHand: []conquest.Card{
			{Top: 5, Right: 6, Bottom: 7, Left: 8},
			{Top: 8, Right: 7, Bottom: 6, Left: 5},
		},
	}
}

func TestHuman(t *testing.T) {
	tests := []struct {
		desc    string
		in      string
		want    *conquest.Placement
		wantErr error
		// Number of times the user should have been asked for a move.
		prompts int
	}{
		{
			desc:    "valid move",
			in:      "1 8\n",
			want:    &conquest.Placement{Card: 1, Cell: 8},
			prompts: 1,
		},
		{
			desc:    "garbage, then valid",
			in:      "hello\n0 0\n",
			want:    &conquest.Placement{Card: 0, Cell: 0},
			prompts: 2,
		},
		{
			desc:    "bad card, bad cell, taken cell, then valid",
			in:      "2 0\n0 9\n0 4\n0 3\n",
			want:    &conquest.Placement{Card: 0, Cell: 3},
			prompts: 4,
		},
		{
			desc:    "runs out of input",
			in:      "-1 0\n",
			wantErr: ErrNoInput,
			prompts: 2,
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			var out bytes.Buffer
			h := &Human{In: strings.NewReader(test.in), Out: &out}

			got, err := h.Move(testState(), conquest.Home)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Move: got error %v, want %v", err, test.wantErr)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("unexpected placement (-want +got)\n%s", diff)
			}
			if n := strings.Count(out.String(), "enter a card and a cell"); n != test.prompts {
				t.Errorf("prompted %d times, want %d", n, test.prompts)
			}
		})
	}
}

func TestHuman_KeepsReading(t *testing.T) {
	h := &Human{In: strings.NewReader("0 0\n1 1\n"), Out: &bytes.Buffer{}}

	var got []*conquest.Placement
	for i := 0; i < 2; i++ {
		pl, err := h.Move(testState(), conquest.Home)
		if err != nil {
			t.Fatalf("Move %d: %v", i, err)
		}
		got = append(got, pl)
	}

	want := []*conquest.Placement{{Card: 0, Cell: 0}, {Card: 1, Cell: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected placements (-want +got)\n%s", diff)
	}
}

func TestPrintBoard(t *testing.T) {
	var buf bytes.Buffer
	PrintBoard(&buf, testState().Board)

	out := buf.String()
	for _, want := range []string{"(0)", "(3)", "(8)", "1/2/3/4"} {
		if !strings.Contains(out, want) {
			t.Errorf("board output is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(4)") {
		t.Errorf("board output shows the taken cell as empty:\n%s", out)
	}
}

func TestPrintHand(t *testing.T) {
	var buf bytes.Buffer
	PrintHand(&buf, testState().HomeHand)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Border, header, border, two cards, border.
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[3], "5") || !strings.Contains(lines[4], "8") {
		t.Errorf("cards aren't listed in order:\n%s", buf.String())
	}
}
