package communication

import (
	"encoding/json"
	"errors"
	"fmt"

	"duel/game"
	"duel/meta"
	"duel/searcher"
)

const (
	Nim       = "nim"
	TicTacToe = "tictactoe"
)

var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrPositionLimit = errors.New("position exceeds size limit")
)

// Position is the wire form of a game state.
type Position struct {
	Game   string      `json:"game"`
	Player game.Player `json:"player"`
	Piles  []int       `json:"piles,omitempty"` // Nim only
	Board  string      `json:"board,omitempty"` // Tic-tac-toe layout, see game.TicTacToeFrom
}

// DecideRequest asks an agent for an action within Budget, a duration
// string such as "50ms".
type DecideRequest struct {
	Position Position `json:"position"`
	Budget   string   `json:"budget"`
}

type DecideResponse struct {
	Action  json.RawMessage        `json:"action"`
	Metrics searcher.SearchMetrics `json:"metrics"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Encode converts a state of one of the supported games into a Position.
func Encode(state any) (Position, error) {
	switch s := state.(type) {
	case *game.Nim:
		return Position{Game: Nim, Player: s.Player(), Piles: s.Piles()}, nil
	case *game.TicTacToe:
		return Position{Game: TicTacToe, Player: s.Player(), Board: s.Layout()}, nil
	default:
		return Position{}, fmt.Errorf("%w: cannot encode %T", ErrUnknownGame, state)
	}
}

// Decode rebuilds the state a Position describes. A must be the action type
// of the game it names.
func Decode[A comparable](p Position) (game.State[A], error) {
	var state any
	switch p.Game {
	case Nim:
		if err := checkPiles(p.Piles); err != nil {
			return nil, err
		}
		n, err := game.NimFrom(p.Piles, p.Player)
		if err != nil {
			return nil, fmt.Errorf("invalid nim position: %w", err)
		}
		state = n
	case TicTacToe:
		t, err := game.TicTacToeFrom(p.Board)
		if err != nil {
			return nil, fmt.Errorf("invalid tic-tac-toe position: %w", err)
		}
		if t.Player() != p.Player {
			return nil, fmt.Errorf("invalid tic-tac-toe position: %s to move on %q", p.Player, p.Board)
		}
		state = t
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, p.Game)
	}

	s, ok := state.(game.State[A])
	if !ok {
		return nil, fmt.Errorf("%s actions are not %T", p.Game, *new(A))
	}
	return s, nil
}

// checkPiles bounds the total number of objects so that listing the actions
// of a position stays cheap. Negative sizes are left to game.NimFrom.
func checkPiles(piles []int) error {
	total := 0
	for _, size := range piles {
		if size <= 0 {
			continue
		}
		if size > meta.MAX_NIM_OBJECTS-total {
			return fmt.Errorf("%w: nim piles hold more than %d objects", ErrPositionLimit, meta.MAX_NIM_OBJECTS)
		}
		total += size
	}
	return nil
}
