package searcher

import (
	"context"
	"errors"

	"duel/game"

	"golang.org/x/exp/rand"
)

var (
	ErrNoLegalActions = errors.New("no legal actions at root state")
	ErrNilReporter    = errors.New("reporter must not be nil")
)

// Reporter receives candidate actions. It may be called any number of times;
// the last action reported before the caller's cutoff is the one to play.
type Reporter[A comparable] func(action A)

// Searcher is an anytime search strategy. Search reports a legal action
// almost immediately, then keeps reporting improved recommendations until
// ctx is cancelled or its own work limit is reached. The caller only learns
// the decision through report; the returned error only explains why the
// search stopped.
type Searcher[A comparable] interface {
	Search(ctx context.Context, state game.State[A], report Reporter[A]) error
	// Metrics returns statistics of the latest Search call
	Metrics() SearchMetrics
}

func (r Reporter[A]) counted(metrics Collector) Reporter[A] {
	return func(action A) {
		metrics.AddReport()
		r(action)
	}
}

// reportRandom reports a uniformly random legal action as a placeholder
// before any analysis.
func reportRandom[A comparable](rng *rand.Rand, state game.State[A], report Reporter[A]) error {
	actions := state.Actions()
	if len(actions) == 0 {
		return ErrNoLegalActions
	}
	report(actions[rng.Intn(len(actions))])
	return nil
}
