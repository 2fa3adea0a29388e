package arena

import (
	"context"
	"fmt"
	"io"
	"time"

	"duel/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Standing tallies the games of one matchup.
type Standing struct {
	Agent1     int
	Agent2     int
	Wins1      int
	Wins2      int
	Draws      int
	Unfinished int
}

type Summary struct {
	RunID     string
	Dir       string
	Standings []Standing
}

// RunTournament plays every matchup of config Games times, running up to
// Parallelism games at once, and writes the records under config.Output.
func RunTournament(ctx context.Context, config *Config) (*Summary, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Game {
	case Nim:
		return runTournament[game.NimMove](ctx, config)
	default:
		return runTournament[game.Cell](ctx, config)
	}
}

func runTournament[A comparable](ctx context.Context, config *Config) (*Summary, error) {
	runID := uuid.NewString()
	startTime := time.Now()
	total := len(config.Matchups) * config.Games
	gameRecords := make([]GameRecord, total)
	moveMetrics := make([][]MoveMetric, total)

	log.Info().Msgf("starting tournament %s: %d matchups of %d games each...", runID, len(config.Matchups), config.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Parallelism)
	for mi, matchup := range config.Matchups {
		config1 := config.agent(matchup[0])
		config2 := config.agent(matchup[1])

		for i := 0; i < config.Games; i++ {
			id := mi*config.Games + i + 1
			mi, i := mi, i

			g.Go(func() error {
				log.Debug().Msgf("starting matchup %d game %d of %d...", mi+1, i+1, config.Games)

				match := NewMatch(
					initialState[A](config),
					Agent[A]{ID: config1.ID, Searcher: NewSearcher[A](config1, id)},
					Agent[A]{ID: config2.ID, Searcher: NewSearcher[A](config2, id)},
					config.Budget,
				)
				match.MaxTurns = config.MaxTurns

				gameMetric, moves, err := match.Run(ctx)
				if err != nil {
					return fmt.Errorf("game %d: %w", id, err)
				}
				// Each game owns its own index
				gameRecords[id-1] = GameRecord{ID: id, Agent1: config1.ID, Agent2: config2.ID, GameMetric: gameMetric}
				moveMetrics[id-1] = moves

				log.Info().Msgf("completed matchup %d game %d with outcome: %s", mi+1, i+1, gameMetric.Outcome)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Msgf("completed tournament %s", runID)

	moveRecords := []MoveRecord{}
	for i, moves := range moveMetrics {
		for _, mm := range moves {
			moveRecords = append(moveRecords, MoveRecord{Game: i + 1, MoveMetric: mm})
		}
	}

	writer, err := NewWriter(config.Output, config.Game)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament writer: %w", err)
	}
	err = writer.WriteSetup(Setup{
		RunID:     runID,
		StartTime: startTime,
		EndTime:   time.Now(),
		Budget:    config.Budget.String(),
		Config:    config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store setup: %w", err)
	}
	err = writer.WriteGameRecords(gameRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to store game records: %w", err)
	}
	err = writer.WriteMoveRecords(moveRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to store move records: %w", err)
	}
	log.Info().Msgf("stored records in %s", writer.Dir())

	return &Summary{
		RunID:     runID,
		Dir:       writer.Dir(),
		Standings: tally(config, gameRecords),
	}, nil
}

func tally(config *Config, records []GameRecord) []Standing {
	standings := make([]Standing, len(config.Matchups))
	for mi, matchup := range config.Matchups {
		standings[mi] = Standing{Agent1: matchup[0], Agent2: matchup[1]}
	}
	for _, record := range records {
		s := &standings[(record.ID-1)/config.Games]
		switch record.Outcome {
		case FirstWins:
			s.Wins1++
		case SecondWins:
			s.Wins2++
		case Drawn:
			s.Draws++
		default:
			s.Unfinished++
		}
	}
	return standings
}

// Play runs a single game between the first two configured agents and
// traces every move to out.
func Play(ctx context.Context, config *Config, out io.Writer) (GameMetric, error) {
	if err := config.Validate(); err != nil {
		return GameMetric{}, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Game {
	case Nim:
		return play[game.NimMove](ctx, config, out)
	default:
		return play[game.Cell](ctx, config, out)
	}
}

func play[A comparable](ctx context.Context, config *Config, out io.Writer) (GameMetric, error) {
	config1 := config.agent(config.Matchups[0][0])
	config2 := config.agent(config.Matchups[0][1])

	match := NewMatch(
		initialState[A](config),
		Agent[A]{ID: config1.ID, Searcher: NewSearcher[A](config1, 1)},
		Agent[A]{ID: config2.ID, Searcher: NewSearcher[A](config2, 1)},
		config.Budget,
	)
	match.MaxTurns = config.MaxTurns
	match.Trace = out

	gameMetric, _, err := match.Run(ctx)
	return gameMetric, err
}
