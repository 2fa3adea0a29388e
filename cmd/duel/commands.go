package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"duel/arena"
	"duel/communication/server"
	"duel/meta"
	"duel/searcher"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		pretty   bool
	)

	rootCmd := &cobra.Command{
		Use:           "duel",
		Short:         "Anytime adversarial search for two-player games",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			zerolog.SetGlobalLevel(level)
			if pretty {
				log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen})
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", isatty.IsTerminal(os.Stderr.Fd()), "human readable logs")

	rootCmd.AddCommand(newPlayCmd(), newTournamentCmd(), newServeCmd(), newVersionCmd())
	return rootCmd
}

func newPlayCmd() *cobra.Command {
	var (
		first, second agentFlags
		game          string
		piles         []int
		budget        time.Duration
		maxTurns      int
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one game between two agents and print every move",
		Example: `  duel play --game nim --piles 3,4,5 --first mcts --second minimax --budget 100ms
  duel play --game tictactoe --first minimax --second-depth 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := &arena.Config{
				Game:        game,
				Piles:       piles,
				Games:       1,
				Parallelism: 1,
				Budget:      budget,
				MaxTurns:    maxTurns,
				Agents:      []arena.AgentConfig{first.config(1), second.config(2)},
				Matchups:    [][]int{{1, 2}},
			}
			if game == arena.Nim && len(piles) == 0 {
				config.Piles = []int{3, 4, 5}
			}

			gameMetric, err := arena.Play(cmd.Context(), config, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			log.Info().Msgf("game over after %d moves in %v: %s", gameMetric.TotalMoves, gameMetric.Duration, gameMetric.Outcome)
			return nil
		},
	}
	cmd.Flags().StringVar(&game, "game", arena.Nim, "nim or tictactoe")
	cmd.Flags().IntSliceVar(&piles, "piles", nil, "nim pile sizes (default 3,4,5)")
	cmd.Flags().DurationVar(&budget, "budget", meta.BUDGET, "thinking time per move")
	cmd.Flags().IntVar(&maxTurns, "max-turns", meta.MAX_TURNS, "stop the game after this many moves")
	first.register(cmd, "first", arena.StrategyMCTS)
	second.register(cmd, "second", arena.StrategyMinimax)
	return cmd
}

// agentFlags binds the flags describing one side of a game.
type agentFlags struct {
	strategy    string
	maxDepth    int
	exploration float64
	iterations  int
	seed        uint64
	url         string
}

func (f *agentFlags) register(cmd *cobra.Command, side, strategy string) {
	cmd.Flags().StringVar(&f.strategy, side, strategy, fmt.Sprintf("strategy of the %s player: minimax, mcts or remote", side))
	cmd.Flags().IntVar(&f.maxDepth, side+"-depth", 0, "minimax depth limit (0 for default)")
	cmd.Flags().Float64Var(&f.exploration, side+"-exploration", searcher.ExplorationCost, "mcts exploration cost (0 for pure exploitation)")
	cmd.Flags().IntVar(&f.iterations, side+"-iterations", 0, "mcts iteration limit per move (0 for none)")
	cmd.Flags().Uint64Var(&f.seed, side+"-seed", 0, "random seed (0 for time based)")
	cmd.Flags().StringVar(&f.url, side+"-url", "", "address of a remote agent started with duel serve")
}

func (f *agentFlags) config(id int) arena.AgentConfig {
	exploration := f.exploration
	return arena.AgentConfig{
		ID:          id,
		Strategy:    f.strategy,
		MaxDepth:    f.maxDepth,
		Exploration: &exploration,
		Iterations:  f.iterations,
		Seed:        f.seed,
		URL:         f.url,
	}
}

func newTournamentCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Run every configured matchup and store game and move records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := arena.LoadConfig(configPath)
			if err != nil {
				return err
			}

			summary, err := arena.RunTournament(cmd.Context(), config)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s stored in %s\n", summary.RunID, summary.Dir)
			for _, s := range summary.Standings {
				fmt.Fprintf(out, "agent %d vs agent %d: %d-%d, %d draws, %d unfinished\n",
					s.Agent1, s.Agent2, s.Wins1, s.Wins2, s.Draws, s.Unfinished)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "tournament.yaml", "path to the tournament config")
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		agent     agentFlags
		addr      string
		maxBudget time.Duration
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve an agent over HTTP for remote play",
		Example: "  duel serve --addr :8080 --agent minimax --agent-depth 6",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := agent.config(1)
			if config.Strategy == arena.StrategyRemote {
				return errors.New("agent: cannot serve a remote agent")
			}
			if err := config.Validate(); err != nil {
				return fmt.Errorf("agent.%w", err)
			}
			if maxBudget <= 0 {
				return fmt.Errorf("max-budget: must be positive, got %v", maxBudget)
			}

			return server.NewServer(config, maxBudget).Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&maxBudget, "max-budget", meta.MAX_BUDGET, "longest thinking time granted per request")
	agent.register(cmd, "agent", arena.StrategyMCTS)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "duel %s\n", version)
		},
	}
}
