package arena

import (
	"context"
	"fmt"
	"io"
	"time"

	"duel/game"
	"duel/meta"
	"duel/searcher"

	"github.com/rs/zerolog/log"
)

type Agent[A comparable] struct {
	ID       int
	Searcher searcher.Searcher[A]
}

// Match plays one game between two agents, each given the same thinking
// budget per move.
type Match[A comparable] struct {
	State    game.State[A]
	Agents   [2]Agent[A] // Indexed by game.Player
	Budget   time.Duration
	MaxTurns int
	Trace    io.Writer // Receives every move and position if set
}

func NewMatch[A comparable](state game.State[A], first, second Agent[A], budget time.Duration) *Match[A] {
	if first.Searcher == nil || second.Searcher == nil {
		panic("both agents need a searcher")
	}
	return &Match[A]{
		State:    state,
		Agents:   [2]Agent[A]{first, second},
		Budget:   budget,
		MaxTurns: meta.MAX_TURNS,
	}
}

// Run executes the entire game loop until the game is over or the turn
// limit is reached.
func (m *Match[A]) Run(ctx context.Context) (GameMetric, []MoveMetric, error) {
	gameMetric := GameMetric{StartTime: time.Now()}
	moveMetrics := []MoveMetric{}

	state := m.State
	m.trace("%v\n\n", state)
	for step := 1; !game.IsTerminal(state) && step <= m.MaxTurns; step++ {
		if err := ctx.Err(); err != nil {
			return gameMetric, moveMetrics, err
		}
		player := state.Player()
		agent := m.Agents[player]

		action, err := Decide(ctx, agent.Searcher, state, m.Budget)
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("agent %d failed to move at step %d: %w", agent.ID, step, err)
		}
		moveMetrics = append(moveMetrics, MoveMetric{
			Step:          step,
			Player:        player,
			Agent:         agent.ID,
			Action:        fmt.Sprint(action),
			SearchMetrics: agent.Searcher.Metrics(),
		})
		log.Debug().Msgf("step %d: agent %d (%s) plays %v", step, agent.ID, player, action)

		state = state.Result(action)
		m.trace("%d. %s plays %v\n%v\n\n", step, player, action, state)
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)

	switch winner, decided := game.Outcome(state); {
	case !game.IsTerminal(state):
		gameMetric.Outcome = Unfinished
		log.Warn().Msgf("stopped after %d turns without a result", m.MaxTurns)
	case !decided:
		gameMetric.Outcome = Drawn
	default:
		gameMetric.Winner = m.Agents[winner].ID
		if winner == game.First {
			gameMetric.Outcome = FirstWins
		} else {
			gameMetric.Outcome = SecondWins
		}
	}
	m.trace("result: %s\n", gameMetric.Outcome)

	return gameMetric, moveMetrics, nil
}

func (m *Match[A]) trace(format string, args ...any) {
	if m.Trace != nil {
		fmt.Fprintf(m.Trace, format, args...)
	}
}
