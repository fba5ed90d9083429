package web

import (
	"encoding/json"
	"fmt"

	conquest "github.com/bcspragu/Conquest"
)

// Actions sent over the WebSocket, in the "action" field of every message.
const (
	ActionGameStart  = "GAME_START"
	ActionCardPlaced = "CARD_PLACED"
	ActionGameEnd    = "GAME_END"
)

type GameStart struct {
	Game *conquest.Game `json:"game"`
}

func (gs *GameStart) MarshalJSON() ([]byte, error) {
	type alias GameStart
	return withAction(ActionGameStart, (*alias)(gs))
}

type CardPlaced struct {
	Side    conquest.Side       `json:"side"`
	Card    conquest.Card       `json:"card"`
	Placed  int                 `json:"placed"`
	Flipped []int               `json:"flipped"`
	State   *conquest.GameState `json:"state"`
}

func (cp *CardPlaced) MarshalJSON() ([]byte, error) {
	type alias CardPlaced
	return withAction(ActionCardPlaced, (*alias)(cp))
}

type GameEnd struct {
	// Winner is empty on a draw.
	Winner conquest.Side `json:"winner"`
	Home   int           `json:"home"`
	Away   int           `json:"away"`
}

func (ge *GameEnd) MarshalJSON() ([]byte, error) {
	type alias GameEnd
	return withAction(ActionGameEnd, (*alias)(ge))
}

// withAction marshals msg, which must encode to a JSON object, and adds an
// "action" field to it.
func withAction(action string, msg interface{}) ([]byte, error) {
	dat, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(dat, &fields); err != nil {
		return nil, fmt.Errorf("message for %q isn't an object: %w", action, err)
	}
	if fields["action"], err = json.Marshal(action); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}
