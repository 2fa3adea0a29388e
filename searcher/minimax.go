package searcher

import (
	"context"
	"math"

	"duel/game"

	"github.com/rs/zerolog/log"
)

// Minimax is iterative-deepening minimax with alpha-beta pruning. Every
// completed depth reports its best root action; a depth interrupted by
// cancellation reports nothing.
type Minimax[A comparable] struct {
	base
}

func NewMinimax[A comparable](options ...Option) *Minimax[A] {
	m := &Minimax[A]{}
	m.configure(options)
	return m
}

func (m *Minimax[A]) Search(ctx context.Context, state game.State[A], report Reporter[A]) error {
	if report == nil {
		return ErrNilReporter
	}
	metrics := m.begin()
	report = report.counted(metrics)

	// Placeholder so a legal action is known before the first depth completes
	if err := reportRandom(m.newRand(), state, report); err != nil {
		return err
	}

	s := &search[A]{
		ctx:     ctx,
		player:  state.Player(),
		prune:   m.prune,
		metrics: metrics,
	}
	for depth := 1; depth <= m.maxDepth; depth++ {
		action, value, err := s.root(state, depth)
		if err != nil {
			log.Debug().Msgf("minimax interrupted at depth %d", depth)
			return err
		}
		report(action)
		metrics.AddIteration()
		log.Debug().Msgf("minimax depth %d: best action %v with value %v", depth, action, value)

		if math.IsInf(value, 0) { // Proven outcome, deeper search cannot change it
			break
		}
	}
	return nil
}

// search holds what stays fixed during one Search call. Values are always
// from the perspective of the root mover.
type search[A comparable] struct {
	ctx     context.Context
	player  game.Player
	prune   bool
	metrics Collector
}

// root evaluates every root action to the given depth and returns the best
// one. The first action seeds the running best; later ones replace it only
// on strict improvement.
func (s *search[A]) root(state game.State[A], depth int) (A, float64, error) {
	alpha := math.Inf(-1)
	beta := math.Inf(1)

	actions := state.Actions()
	bestAction := actions[0]
	bestValue := math.Inf(-1)
	for i, action := range actions {
		value, err := s.minValue(state.Result(action), alpha, beta, depth-1)
		if err != nil {
			return bestAction, bestValue, err
		}

		if i == 0 || value > bestValue {
			bestAction, bestValue = action, value
		}
		if s.prune {
			alpha = math.Max(alpha, bestValue)
		}
	}
	return bestAction, bestValue, nil
}

// leaf returns the value of state if it needs no expansion at this depth:
// its utility if the game is over, the mover's mobility times sign if depth
// is exhausted.
func (s *search[A]) leaf(state game.State[A], depth int, sign float64) (value float64, actions []A, ok bool) {
	if state.Utility(state.Player()) != 0 {
		return state.Utility(s.player), nil, true
	}
	actions = state.Actions()
	if len(actions) == 0 { // Drawn
		return state.Utility(s.player), nil, true
	}
	if depth < 1 {
		return sign * float64(len(actions)), actions, true
	}
	return 0, actions, false
}

func (s *search[A]) maxValue(state game.State[A], alpha, beta float64, depth int) (float64, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	s.metrics.AddNode()

	value, actions, ok := s.leaf(state, depth, 1)
	if ok {
		return value, nil
	}

	maximum := math.Inf(-1)
	for _, action := range actions {
		value, err := s.minValue(state.Result(action), alpha, beta, depth-1)
		if err != nil {
			return 0, err
		}
		maximum = math.Max(maximum, value)

		if s.prune {
			if maximum > beta { // Beta cutoff
				return maximum, nil
			}
			alpha = math.Max(alpha, maximum)
		}
	}
	return maximum, nil
}

func (s *search[A]) minValue(state game.State[A], alpha, beta float64, depth int) (float64, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	s.metrics.AddNode()

	// Mobility of the opponent counts against the root mover
	value, actions, ok := s.leaf(state, depth, -1)
	if ok {
		return value, nil
	}

	minimum := math.Inf(1)
	for _, action := range actions {
		value, err := s.maxValue(state.Result(action), alpha, beta, depth-1)
		if err != nil {
			return 0, err
		}
		minimum = math.Min(minimum, value)

		if s.prune {
			if minimum < alpha { // Alpha cutoff
				return minimum, nil
			}
			beta = math.Min(beta, minimum)
		}
	}
	return minimum, nil
}
