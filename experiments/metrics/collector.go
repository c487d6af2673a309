package metrics

import (
	"sync/atomic"
	"time"
)

// SearchMetric describes the work done to find one move.
type SearchMetric struct {
	Searcher string // "minimax", "mcts" or "random"
	Duration time.Duration
	Episodes int // MCTS simulations
	Nodes    int // Positions visited (minimax) or tree nodes created (MCTS)
	Depth    int // Deepest completed minimax iteration or deepest MCTS node
}

type MoveMetric struct {
	Step   int
	Player int // Player number, 1 or 2
	Column int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int // Player number
	Winner         int // Player number, 0 for a draw or an unfinished game
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(searcher string)
	AddEpisode()
	AddNodes(n int)
	ObserveDepth(depth int)
	Complete() SearchMetric
}

type collector struct {
	searcher  string
	startTime time.Time
	episodes  atomic.Int64
	nodes     atomic.Int64
	depth     atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(searcher string) {
	m.searcher = searcher
	m.startTime = time.Now()
	m.episodes.Store(0)
	m.nodes.Store(0)
	m.depth.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddNodes(n int) {
	m.nodes.Add(int64(n))
}

// ObserveDepth keeps the largest depth seen since Start.
func (m *collector) ObserveDepth(depth int) {
	for {
		current := m.depth.Load()
		if int64(depth) <= current || m.depth.CompareAndSwap(current, int64(depth)) {
			return
		}
	}
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Searcher: m.searcher,
		Duration: time.Since(m.startTime),
		Episodes: int(m.episodes.Load()),
		Nodes:    int(m.nodes.Load()),
		Depth:    int(m.depth.Load()),
	}
}
