package arena

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"duel/communication"
	"duel/communication/client"
	"duel/game"
	"duel/meta"
	"duel/searcher"

	"gopkg.in/yaml.v3"
)

const (
	Nim       = communication.Nim
	TicTacToe = communication.TicTacToe

	StrategyMinimax = "minimax"
	StrategyMCTS    = "mcts"
	StrategyRemote  = "remote" // Agent served over HTTP at URL
)

type AgentConfig struct {
	ID          int      `yaml:"id" json:"id"`
	Strategy    string   `yaml:"strategy" json:"strategy"`
	MaxDepth    int      `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`
	NoPruning   bool     `yaml:"no_pruning,omitempty" json:"no_pruning,omitempty"`
	Exploration *float64 `yaml:"exploration,omitempty" json:"exploration,omitempty"` // Unset means searcher.ExplorationCost
	Iterations  int      `yaml:"iterations,omitempty" json:"iterations,omitempty"`
	Seed        uint64   `yaml:"seed,omitempty" json:"seed,omitempty"`
	URL         string   `yaml:"url,omitempty" json:"url,omitempty"`
}

// Config describes a tournament: every matchup is played Games times, the
// first agent of a matchup always moving first.
type Config struct {
	Game        string        `yaml:"game" json:"game"`
	Piles       []int         `yaml:"piles,omitempty" json:"piles,omitempty"`
	Games       int           `yaml:"games" json:"games"`
	Parallelism int           `yaml:"parallelism" json:"parallelism"`
	Budget      time.Duration `yaml:"budget" json:"budget"`
	MaxTurns    int           `yaml:"max_turns" json:"max_turns"`
	Output      string        `yaml:"output" json:"output"`
	Agents      []AgentConfig `yaml:"agents" json:"agents"`
	Matchups    [][]int       `yaml:"matchups" json:"matchups"`
}

// LoadConfig reads a YAML tournament config, fills in defaults and
// validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	config := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.setDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) setDefaults() {
	if c.Game == Nim && len(c.Piles) == 0 {
		c.Piles = []int{3, 4, 5}
	}
	if c.Games == 0 {
		c.Games = meta.GAMES
	}
	if c.Parallelism == 0 {
		c.Parallelism = meta.PARALLELISM
	}
	if c.Budget == 0 {
		c.Budget = meta.BUDGET
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = meta.MAX_TURNS
	}
	if c.Output == "" {
		c.Output = meta.OUTPUT_DIR
	}
}

func (c *Config) Validate() error {
	switch c.Game {
	case Nim:
		total := 0
		for i, pile := range c.Piles {
			if pile < 0 {
				return fmt.Errorf("piles[%d]: must not be negative, got %d", i, pile)
			}
			total += pile
		}
		if total == 0 {
			return errors.New("piles: need at least one object")
		}
	case TicTacToe:
		if len(c.Piles) > 0 {
			return errors.New("piles: only valid for nim")
		}
	default:
		return fmt.Errorf("game: unknown game %q", c.Game)
	}

	if c.Games < 1 {
		return fmt.Errorf("games: must be positive, got %d", c.Games)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism: must be positive, got %d", c.Parallelism)
	}
	if c.Budget <= 0 {
		return fmt.Errorf("budget: must be positive, got %v", c.Budget)
	}
	if c.MaxTurns < 1 {
		return fmt.Errorf("max_turns: must be positive, got %d", c.MaxTurns)
	}

	if len(c.Agents) == 0 {
		return errors.New("agents: need at least one agent")
	}
	ids := map[int]bool{}
	for i, agent := range c.Agents {
		if err := agent.Validate(); err != nil {
			return fmt.Errorf("agents[%d].%w", i, err)
		}
		if ids[agent.ID] {
			return fmt.Errorf("agents[%d].id: duplicate id %d", i, agent.ID)
		}
		ids[agent.ID] = true
	}

	if len(c.Matchups) == 0 {
		return errors.New("matchups: need at least one matchup")
	}
	for i, matchup := range c.Matchups {
		if len(matchup) != 2 {
			return fmt.Errorf("matchups[%d]: need exactly two agent ids, got %d", i, len(matchup))
		}
		for _, id := range matchup {
			if !ids[id] {
				return fmt.Errorf("matchups[%d]: unknown agent id %d", i, id)
			}
		}
	}
	return nil
}

func (a AgentConfig) Validate() error {
	if a.ID < 1 {
		return fmt.Errorf("id: must be positive, got %d", a.ID)
	}
	switch a.Strategy {
	case StrategyMinimax, StrategyMCTS:
		if a.URL != "" {
			return errors.New("url: only valid for remote agents")
		}
	case StrategyRemote:
		if a.URL == "" {
			return errors.New("url: required for remote agents")
		}
	default:
		return fmt.Errorf("strategy: unknown strategy %q", a.Strategy)
	}
	if a.MaxDepth < 0 {
		return fmt.Errorf("max_depth: must not be negative, got %d", a.MaxDepth)
	}
	if a.Exploration != nil && *a.Exploration < 0 {
		return fmt.Errorf("exploration: must not be negative, got %v", *a.Exploration)
	}
	if a.Iterations < 0 {
		return fmt.Errorf("iterations: must not be negative, got %d", a.Iterations)
	}
	return nil
}

func (c *Config) agent(id int) AgentConfig {
	for _, agent := range c.Agents {
		if agent.ID == id {
			return agent
		}
	}
	panic(fmt.Sprintf("agent %d not configured", id))
}

// NewSearcher builds the searcher an agent config describes. A configured
// seed is offset by gameID so that repeated games differ but replay exactly.
func NewSearcher[A comparable](config AgentConfig, gameID int) searcher.Searcher[A] {
	if config.Strategy == StrategyRemote {
		return client.NewSearcher[A](config.URL)
	}

	options := []searcher.Option{searcher.WithMetrics()}

	if config.MaxDepth > 0 {
		options = append(options, searcher.WithMaxDepth(config.MaxDepth))
	}
	if config.NoPruning {
		options = append(options, searcher.WithoutPruning())
	}
	if config.Exploration != nil {
		options = append(options, searcher.WithExplorationCost(*config.Exploration))
	}
	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	if config.Seed > 0 {
		options = append(options, searcher.WithSeed(config.Seed+uint64(gameID)))
	}

	if config.Strategy == StrategyMinimax {
		return searcher.NewMinimax[A](options...)
	}
	return searcher.NewMCTS[A](options...)
}

// initialState returns the starting position of the configured game.
func initialState[A comparable](c *Config) game.State[A] {
	var state any
	switch c.Game {
	case Nim:
		state = game.NewNim(c.Piles...)
	case TicTacToe:
		state = game.NewTicTacToe()
	}
	return state.(game.State[A])
}
