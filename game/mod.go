package game

import "math"

// Player is the binary identity of a side in a two-player game.
type Player int8

const (
	First Player = iota
	Second
)

func (p Player) Opponent() Player {
	return 1 - p
}

func (p Player) String() string {
	if p == First {
		return "first"
	}
	return "second"
}

// Utilities reported by terminal states, from the perspective of the player asked.
var (
	Win  = math.Inf(1)
	Loss = math.Inf(-1)
)

const Draw = 0.0

// State should be immutable - Result always returns a new state and never
// mutates the receiver.
type State[A comparable] interface {
	// Player returns the side to move
	Player() Player
	// Actions returns the legal actions for the side to move, in no particular order
	Actions() []A
	// Result returns the successor state with the turn already advanced
	Result(action A) State[A]
	// Utility is 0 for non-terminal states, Win or Loss for a decided state
	Utility(player Player) float64
}

// IsTerminal reports whether the game is over at state: either decided, or
// drawn with no legal actions left.
func IsTerminal[A comparable](state State[A]) bool {
	return state.Utility(state.Player()) != 0 || len(state.Actions()) == 0
}

// Outcome returns the winner of a terminal state, and false for a draw.
func Outcome[A comparable](state State[A]) (winner Player, decided bool) {
	switch u := state.Utility(First); {
	case u > 0:
		return First, true
	case u < 0:
		return Second, true
	default:
		return First, false
	}
}
