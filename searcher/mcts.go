package searcher

import (
	"context"

	"duel/game"

	"github.com/rs/zerolog/log"
)

// MCTS is Monte Carlo Tree Search with UCT selection and uniformly random
// rollouts. Each Search call grows a fresh tree and drops it on return.
type MCTS[A comparable] struct {
	base
}

func NewMCTS[A comparable](options ...Option) *MCTS[A] {
	m := &MCTS[A]{}
	m.configure(options)
	return m
}

func (m *MCTS[A]) Search(ctx context.Context, state game.State[A], report Reporter[A]) error {
	if report == nil {
		return ErrNilReporter
	}
	metrics := m.begin()
	report = report.counted(metrics)
	rng := m.newRand()

	// Placeholder so a legal action is known before the first episode
	if err := reportRandom(rng, state, report); err != nil {
		return err
	}

	t := newTree(state, rng, m.explorationCost)
	if t.root().isTerminal() { // Decided root, nothing to improve on
		return nil
	}
	for episode := 0; m.iterations == 0 || episode < m.iterations; episode++ {
		if err := ctx.Err(); err != nil {
			log.Debug().Msgf("mcts interrupted after %d episodes with %d nodes", episode, len(t.nodes))
			return err
		}

		t.simulate(metrics)
		metrics.AddIteration()
		report(t.recommend())
	}

	log.Debug().Msgf("mcts completed %d episodes with %d nodes", m.iterations, len(t.nodes))
	return nil
}

// simulate runs one episode: selection and expansion, rollout, backup.
func (t *tree[A]) simulate(metrics Collector) {
	leaf := t.selectThenExpand()
	if t.nodes[leaf].visits == 0 {
		metrics.AddNode()
	}
	delta := t.rollout(leaf)
	metrics.AddPlayout()
	t.backup(leaf, delta)
}

// selectThenExpand descends by UCT from the root until it reaches a
// terminal node or expands a new child.
func (t *tree[A]) selectThenExpand() int {
	current := 0
	for !t.nodes[current].isTerminal() {
		if !t.nodes[current].isFullyExpanded() {
			return t.addChild(current)
		}
		current = t.bestChild(current, t.cost)
	}
	return current
}

// rollout plays random actions from the state of node i until the game is
// over. The reward is for the parent of node i: a loss for the mover at i
// is a win for whoever moved into it.
func (t *tree[A]) rollout(i int) float64 {
	state := t.nodes[i].state
	player := t.nodes[i].player

	for state.Utility(state.Player()) == 0 {
		actions := state.Actions()
		if len(actions) == 0 { // Drawn
			break
		}
		state = state.Result(actions[t.rng.Intn(len(actions))]) // Random rollout policy
	}

	switch utility := state.Utility(player); {
	case utility < 0:
		return Win
	case utility > 0:
		return Loss
	default:
		return Draw
	}
}

// backup records delta on node i and every ancestor, negating it at each
// level since consecutive levels belong to opposing movers.
func (t *tree[A]) backup(i int, delta float64) {
	node := i
	for node != noParent {
		node = t.backupNode(node, delta)
		delta = -delta
	}
}

// recommend returns the incoming action of the root child with the best
// average reward, without exploration.
func (t *tree[A]) recommend() A {
	return t.nodes[t.bestChild(0, 0)].action
}
