package searcher

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
)

// Hyperparameters

const (
	MaxDepth        = 10         // Iterative deepening ceiling in plies
	ExplorationCost = math.Sqrt2 // UCT exploration constant
)

// Rollout rewards, attributed to the parent of the node the rollout started from
const (
	Win  = 1.0
	Loss = -Win
	Draw = 0.0
)

type Option func(c *config)

type config struct {
	maxDepth        int
	prune           bool
	explorationCost float64
	iterations      int
	seed            uint64
	metrics         bool
}

// WithMaxDepth bounds Minimax iterative deepening.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithoutPruning makes Minimax search the full tree without alpha-beta cutoffs.
func WithoutPruning() Option {
	return func(c *config) {
		c.prune = false
	}
}

func WithExplorationCost(cost float64) Option {
	return func(c *config) {
		if cost >= 0 {
			c.explorationCost = cost
		}
	}
}

// WithIterations stops MCTS after a number of iterations even if ctx is
// still live. Zero means no limit.
func WithIterations(iterations int) Option {
	return func(c *config) {
		if iterations > 0 {
			c.iterations = iterations
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

func WithMetrics() Option {
	return func(c *config) {
		c.metrics = true
	}
}

// base carries what both strategies share: configuration, per call
// randomness and the collector of the latest call.
type base struct {
	config
	calls     atomic.Uint64
	mu        sync.Mutex
	collector Collector
}

func (b *base) configure(options []Option) {
	b.config = config{ // Default values
		maxDepth:        MaxDepth,
		prune:           true,
		explorationCost: ExplorationCost,
		seed:            uint64(time.Now().UnixNano()),
	}
	for _, option := range options {
		option(&b.config)
	}
	b.collector = NewDummyCollector()
}

// newRand gives every call its own generator, so an abandoned search that
// is still winding down never shares one with the next call.
func (b *base) newRand() *rand.Rand {
	return rand.New(rand.NewSource(b.seed + b.calls.Add(1)))
}

func (b *base) begin() Collector {
	var c Collector
	if b.metrics {
		c = NewCollector()
	} else {
		c = NewDummyCollector()
	}
	c.Start()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.collector = c
	return c
}

func (b *base) Metrics() SearchMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.collector.Complete()
}
