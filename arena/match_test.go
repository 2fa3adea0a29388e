package arena

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"duel/game"
	"duel/searcher"

	"github.com/stretchr/testify/require"
)

var errCrashed = errors.New("engine crashed")

func TestMatch(t *testing.T) {
	t.Run("forced win in one move", func(t *testing.T) {
		match := NewMatch[game.NimMove](
			game.NewNim(3),
			Agent[game.NimMove]{ID: 1, Searcher: searcher.NewMinimax[game.NimMove]()},
			Agent[game.NimMove]{ID: 2, Searcher: searcher.NewMinimax[game.NimMove]()},
			time.Second,
		)

		gameMetric, moves, err := match.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, FirstWins, gameMetric.Outcome)
		require.Equal(t, 1, gameMetric.Winner)
		require.Equal(t, 1, gameMetric.TotalMoves)
		require.Len(t, moves, 1)
		require.Equal(t, "take 3 from pile 0", moves[0].Action)
	})

	t.Run("perfect play draws tic-tac-toe", func(t *testing.T) {
		match := NewMatch[game.Cell](
			game.NewTicTacToe(),
			Agent[game.Cell]{ID: 1, Searcher: searcher.NewMinimax[game.Cell](searcher.WithSeed(1))},
			Agent[game.Cell]{ID: 2, Searcher: searcher.NewMinimax[game.Cell](searcher.WithSeed(2))},
			10*time.Second,
		)

		gameMetric, moves, err := match.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, Drawn, gameMetric.Outcome)
		require.Equal(t, 0, gameMetric.Winner)
		require.Len(t, moves, 9)
		for i, mm := range moves {
			require.Equal(t, i+1, mm.Step)
			require.Equal(t, game.Player(i%2), mm.Player, "Players should alternate")
			require.Equal(t, i%2+1, mm.Agent)
		}
	})

	t.Run("stopping at the turn limit", func(t *testing.T) {
		match := NewMatch[game.NimMove](
			game.NewNim(5, 5, 5),
			Agent[game.NimMove]{ID: 1, Searcher: searcher.NewMCTS[game.NimMove](searcher.WithIterations(10))},
			Agent[game.NimMove]{ID: 2, Searcher: searcher.NewMCTS[game.NimMove](searcher.WithIterations(10))},
			time.Second,
		)
		match.MaxTurns = 2

		gameMetric, moves, err := match.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, Unfinished, gameMetric.Outcome)
		require.Len(t, moves, 2)
	})

	t.Run("collecting search metrics per move", func(t *testing.T) {
		match := NewMatch[game.NimMove](
			game.NewNim(2, 2),
			Agent[game.NimMove]{ID: 1, Searcher: searcher.NewMCTS[game.NimMove](searcher.WithIterations(30), searcher.WithMetrics())},
			Agent[game.NimMove]{ID: 2, Searcher: searcher.NewMCTS[game.NimMove](searcher.WithIterations(30), searcher.WithMetrics())},
			time.Second,
		)

		_, moves, err := match.Run(context.Background())

		require.NoError(t, err)
		require.NotEmpty(t, moves)
		for _, mm := range moves {
			require.Positive(t, mm.Reports, "Every move should come from a report")
		}
	})

	t.Run("silent agent still finishes the game", func(t *testing.T) {
		match := NewMatch[game.NimMove](
			game.NewNim(2, 2),
			Agent[game.NimMove]{ID: 1, Searcher: reportThenWait[game.NimMove]()},
			Agent[game.NimMove]{ID: 2, Searcher: searcher.NewMinimax[game.NimMove]()},
			5*time.Millisecond,
		)

		gameMetric, moves, err := match.Run(context.Background())

		require.NoError(t, err)
		require.NotEqual(t, Unfinished, gameMetric.Outcome)
		require.NotEmpty(t, moves)
	})

	t.Run("failing agent", func(t *testing.T) {
		match := NewMatch[game.NimMove](
			game.NewNim(3),
			Agent[game.NimMove]{ID: 7, Searcher: &fakeSearcher[game.NimMove]{search: func(context.Context, game.State[game.NimMove], searcher.Reporter[game.NimMove]) error {
				return errCrashed
			}}},
			Agent[game.NimMove]{ID: 2, Searcher: searcher.NewMinimax[game.NimMove]()},
			5*time.Millisecond,
		)

		_, _, err := match.Run(context.Background())

		require.ErrorIs(t, err, errCrashed)
		require.ErrorContains(t, err, "agent 7")
	})

	t.Run("cancelled before the first move", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		match := NewMatch[game.NimMove](
			game.NewNim(3),
			Agent[game.NimMove]{ID: 1, Searcher: searcher.NewMinimax[game.NimMove]()},
			Agent[game.NimMove]{ID: 2, Searcher: searcher.NewMinimax[game.NimMove]()},
			time.Second,
		)

		_, moves, err := match.Run(ctx)

		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, moves)
	})

	t.Run("tracing moves", func(t *testing.T) {
		var out bytes.Buffer
		match := NewMatch[game.NimMove](
			game.NewNim(3),
			Agent[game.NimMove]{ID: 1, Searcher: searcher.NewMinimax[game.NimMove]()},
			Agent[game.NimMove]{ID: 2, Searcher: searcher.NewMinimax[game.NimMove]()},
			time.Second,
		)
		match.Trace = &out

		_, _, err := match.Run(context.Background())

		require.NoError(t, err)
		require.Contains(t, out.String(), "1. first plays take 3 from pile 0")
		require.Contains(t, out.String(), "result: first")
	})

	t.Run("panics without a searcher", func(t *testing.T) {
		require.Panics(t, func() {
			NewMatch[game.NimMove](game.NewNim(1), Agent[game.NimMove]{ID: 1}, Agent[game.NimMove]{ID: 2}, time.Second)
		})
	})
}
