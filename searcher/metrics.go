package searcher

import (
	"sync/atomic"
	"time"
)

type SearchMetrics struct {
	StartTime  time.Time
	Duration   time.Duration
	Iterations int64 // MCTS episodes or completed Minimax depths
	Nodes      int64 // Minimax nodes visited or MCTS nodes expanded
	Playouts   int64
	Reports    int64
}

// Collector counters are atomic: a caller may read them while an abandoned
// search is still winding down on another goroutine.
type Collector interface {
	Start()
	AddIteration()
	AddNode()
	AddPlayout()
	AddReport()
	Complete() SearchMetrics
}

type collector struct {
	startTime  time.Time
	iterations atomic.Int64
	nodes      atomic.Int64
	playouts   atomic.Int64
	reports    atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddPlayout() {
	m.playouts.Add(1)
}

func (m *collector) AddReport() {
	m.reports.Add(1)
}

func (m *collector) Complete() SearchMetrics {
	return SearchMetrics{
		StartTime:  m.startTime,
		Duration:   time.Since(m.startTime),
		Iterations: m.iterations.Load(),
		Nodes:      m.nodes.Load(),
		Playouts:   m.playouts.Load(),
		Reports:    m.reports.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                  {}
func (m *dummyCollector) AddIteration()           {}
func (m *dummyCollector) AddNode()                {}
func (m *dummyCollector) AddPlayout()             {}
func (m *dummyCollector) AddReport()              {}
func (m *dummyCollector) Complete() SearchMetrics { return SearchMetrics{} }
