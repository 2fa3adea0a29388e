package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"duel/game"
	"duel/searcher"
	"duel/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// slot keeps the last reported action. The search goroutine writes it and
// Decide reads it once at the deadline.
type slot[A comparable] struct {
	mu     sync.Mutex
	action A
	ok     bool
}

func (s *slot[A]) put(action A) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.action = action
	s.ok = true
}

func (s *slot[A]) get() (A, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.action, s.ok
}

// Decide runs s on its own goroutine and returns the last action it
// reported once budget elapses, or earlier if the search stops by itself.
// The search goroutine is abandoned at the deadline; its context is
// cancelled so it winds down on its own.
func Decide[A comparable](ctx context.Context, s searcher.Searcher[A], state game.State[A], budget time.Duration) (A, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	last := &slot[A]{}
	done := make(chan error, 1)
	go func() {
		done <- s.Search(ctx, state, last.put)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-done:
	}

	failed := err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled)
	action, ok := last.get()
	if !ok && failed {
		return action, fmt.Errorf("search stopped without a decision: %w", err)
	}
	if failed {
		log.Warn().Err(err).Msg("search failed after reporting, keeping its last action")
	}

	// Never let a late or faulty searcher stall the game or make an illegal move
	actions := state.Actions()
	if !ok || !utils.Contains(actions, action) {
		if len(actions) == 0 {
			return action, searcher.ErrNoLegalActions
		}
		fallback := actions[rand.Intn(len(actions))]
		if ok {
			log.Warn().Msgf("searcher reported illegal action %v, playing %v instead", action, fallback)
		} else {
			log.Warn().Msgf("searcher reported nothing within %v, playing %v", budget, fallback)
		}
		return fallback, nil
	}
	return action, nil
}
