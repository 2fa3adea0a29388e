package arena

import (
	"time"

	"duel/game"
	"duel/searcher"
)

type Outcome string

const (
	FirstWins  Outcome = "first"
	SecondWins Outcome = "second"
	Drawn      Outcome = "draw"
	Unfinished Outcome = "unfinished" // Stopped at the turn limit
)

type MoveMetric struct {
	Step   int
	Player game.Player
	Agent  int // AgentConfig.ID
	Action string
	searcher.SearchMetrics
}

type GameMetric struct {
	Outcome    Outcome
	Winner     int // AgentConfig.ID, 0 unless decided
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID, moving first
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}
