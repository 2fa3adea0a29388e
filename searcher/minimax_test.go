package searcher

import (
	"context"
	"math"
	"testing"

	"duel/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newTestSearch(prune bool) (*search[int], Collector) {
	metrics := NewCollector()
	return &search[int]{
		ctx:     context.Background(),
		player:  game.First,
		prune:   prune,
		metrics: metrics,
	}, metrics
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))

	for trial := 0; trial < 200; trial++ {
		root := randomTree(rng, 5)
		if len(root.children) == 0 {
			continue
		}
		state := mockState{node: root}

		for depth := 1; depth <= 6; depth++ {
			pruned, prunedMetrics := newTestSearch(true)
			full, fullMetrics := newTestSearch(false)

			_, prunedValue, err := pruned.root(state, depth)
			require.NoError(t, err)
			_, fullValue, err := full.root(state, depth)
			require.NoError(t, err)

			require.Equal(t, fullValue, prunedValue, "Pruning should not change the root value (trial %d, depth %d)", trial, depth)
			require.LessOrEqual(t, prunedMetrics.Complete().Nodes, fullMetrics.Complete().Nodes,
				"Pruning should never expand more nodes (trial %d, depth %d)", trial, depth)
		}
	}
}

func TestAlphaBetaCutoff(t *testing.T) {
	t.Run("skipping a refuted sibling", func(t *testing.T) {
		// The second min node is refuted by its first leaf (2 < 3)
		state := mockState{node: branch(
			branch(leaf(3), leaf(5)),
			branch(leaf(2), leaf(9)),
		)}
		pruned, prunedMetrics := newTestSearch(true)
		full, fullMetrics := newTestSearch(false)

		action, value, err := pruned.root(state, 2)
		require.NoError(t, err)
		_, fullValue, err := full.root(state, 2)
		require.NoError(t, err)

		require.Equal(t, 0, action)
		require.Equal(t, 3.0, value)
		require.Equal(t, fullValue, value)
		require.Equal(t, int64(5), prunedMetrics.Complete().Nodes, "Leaf 9 should never be visited")
		require.Equal(t, int64(6), fullMetrics.Complete().Nodes)
	})

	t.Run("no cutoff on adversarially ordered tree", func(t *testing.T) {
		// Each min node improves on the previous one, so nothing is refuted
		state := mockState{node: branch(
			branch(leaf(1), leaf(2)),
			branch(leaf(3), leaf(4)),
		)}
		pruned, prunedMetrics := newTestSearch(true)
		full, fullMetrics := newTestSearch(false)

		_, value, err := pruned.root(state, 2)
		require.NoError(t, err)
		_, fullValue, err := full.root(state, 2)
		require.NoError(t, err)

		require.Equal(t, 3.0, value)
		require.Equal(t, fullValue, value)
		require.Equal(t, fullMetrics.Complete().Nodes, prunedMetrics.Complete().Nodes)
	})
}

func TestMinimaxEvaluation(t *testing.T) {
	t.Run("cutoff evaluation counts mover's actions", func(t *testing.T) {
		s, _ := newTestSearch(true)
		state := mockState{node: branch(leaf(1), leaf(2), leaf(3))}

		value, err := s.maxValue(state, math.Inf(-1), math.Inf(1), 0)
		require.NoError(t, err)
		require.Equal(t, 3.0, value)

		value, err = s.minValue(state, math.Inf(-1), math.Inf(1), 0)
		require.NoError(t, err)
		require.Equal(t, -3.0, value, "Opponent mobility should count against the root mover")
	})

	t.Run("terminal utility from the root mover's perspective", func(t *testing.T) {
		s, _ := newTestSearch(true)
		// Second to move in a position lost by the first player
		state := mockState{node: leaf(-7), player: game.Second}

		value, err := s.minValue(state, math.Inf(-1), math.Inf(1), 3)
		require.NoError(t, err)
		require.Equal(t, -7.0, value)
	})

	t.Run("draw without actions", func(t *testing.T) {
		s, _ := newTestSearch(true)

		value, err := s.maxValue(mockState{node: branch()}, math.Inf(-1), math.Inf(1), 3)
		require.NoError(t, err)
		require.Equal(t, 0.0, value)
	})

	t.Run("ties keep the earliest root action", func(t *testing.T) {
		s, _ := newTestSearch(true)
		state := mockState{node: branch(leaf(1), leaf(4), leaf(4), leaf(2))}

		action, value, err := s.root(state, 1)
		require.NoError(t, err)
		require.Equal(t, 1, action)
		require.Equal(t, 4.0, value)
	})

	t.Run("all losing actions still yield a best action", func(t *testing.T) {
		s, _ := newTestSearch(true)
		state := mockState{node: branch(leaf(math.Inf(-1)), leaf(math.Inf(-1)))}

		action, value, err := s.root(state, 1)
		require.NoError(t, err)
		require.Equal(t, 0, action)
		require.Equal(t, math.Inf(-1), value)
	})

	t.Run("cancellation unwinds the recursion", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := &search[int]{ctx: ctx, player: game.First, prune: true, metrics: NewDummyCollector()}

		_, _, err := s.root(mockState{node: branch(branch(leaf(1)))}, 3)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMinimaxSearch(t *testing.T) {
	t.Run("reporting a legal placeholder before cancellation", func(t *testing.T) {
		state := game.NewNim(3, 4, 5)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var reported []game.NimMove

		err := NewMinimax[game.NimMove](WithSeed(1)).Search(ctx, state, func(a game.NimMove) {
			reported = append(reported, a)
		})

		require.ErrorIs(t, err, context.Canceled)
		require.Len(t, reported, 1, "An interrupted depth should not be reported")
		require.Contains(t, state.Actions(), reported[0])
	})

	t.Run("no legal actions", func(t *testing.T) {
		state, err := game.TicTacToeFrom("XOXXOOOXX")
		require.NoError(t, err)
		var reported []game.Cell

		err = NewMinimax[game.Cell]().Search(context.Background(), state, func(a game.Cell) {
			reported = append(reported, a)
		})

		require.ErrorIs(t, err, ErrNoLegalActions)
		require.Empty(t, reported, "Should not report a non-existent action")
	})

	t.Run("nil reporter", func(t *testing.T) {
		err := NewMinimax[game.Cell]().Search(context.Background(), game.NewTicTacToe(), nil)

		require.ErrorIs(t, err, ErrNilReporter)
	})

	t.Run("single action", func(t *testing.T) {
		state := mockState{node: branch(branch(leaf(1), leaf(-1), branch()))}
		var reported []int

		err := NewMinimax[int](WithMaxDepth(4)).Search(context.Background(), state, func(a int) {
			reported = append(reported, a)
		})

		require.NoError(t, err)
		require.Len(t, reported, 5, "Placeholder plus one report per depth")
		for _, a := range reported {
			require.Equal(t, 0, a)
		}
	})

	t.Run("depth-1 forced win", func(t *testing.T) {
		m := NewMinimax[game.NimMove](WithMaxDepth(1), WithMetrics())
		var reported []game.NimMove

		err := m.Search(context.Background(), game.NewNim(3), func(a game.NimMove) {
			reported = append(reported, a)
		})

		require.NoError(t, err)
		require.Len(t, reported, 2)
		require.Equal(t, game.NimMove{Pile: 0, Take: 3}, reported[1], "Taking the whole pile wins at once")
		require.Equal(t, int64(1), m.Metrics().Iterations)
		require.Equal(t, int64(2), m.Metrics().Reports)
	})

	t.Run("stopping early on a proven outcome", func(t *testing.T) {
		m := NewMinimax[game.NimMove](WithMetrics())

		err := m.Search(context.Background(), game.NewNim(3), func(game.NimMove) {})

		require.NoError(t, err)
		require.Equal(t, int64(1), m.Metrics().Iterations, "A proven win should end iterative deepening")
	})

	t.Run("winning nim move", func(t *testing.T) {
		state := game.NewNim(1, 2, 4)
		var last game.NimMove

		err := NewMinimax[game.NimMove]().Search(context.Background(), state, func(a game.NimMove) {
			last = a
		})

		require.NoError(t, err)
		require.Equal(t, 0, state.Result(last).(*game.Nim).NimSum(), "Winning move leaves a zero nim sum")
	})

	t.Run("blocking a tic-tac-toe row", func(t *testing.T) {
		state, err := game.TicTacToeFrom("OO.X....X")
		require.NoError(t, err)
		var last game.Cell

		err = NewMinimax[game.Cell]().Search(context.Background(), state, func(a game.Cell) {
			last = a
		})

		require.NoError(t, err)
		require.Equal(t, game.Cell(2), last)
	})

	t.Run("exhaustive search agrees with pruning", func(t *testing.T) {
		state := game.NewNim(2, 2, 3)
		var pruned, full game.NimMove

		err := NewMinimax[game.NimMove]().Search(context.Background(), state, func(a game.NimMove) {
			pruned = a
		})
		require.NoError(t, err)
		err = NewMinimax[game.NimMove](WithoutPruning()).Search(context.Background(), state, func(a game.NimMove) {
			full = a
		})
		require.NoError(t, err)

		require.Equal(t, 0, state.Result(pruned).(*game.Nim).NimSum())
		require.Equal(t, 0, state.Result(full).(*game.Nim).NimSum())
	})
}
