package searcher

import (
	"errors"

	"connect4/experiments/metrics"
)

// ErrNoLegalMoves is returned when a search is asked to move on a terminal board.
var ErrNoLegalMoves = errors.New("no legal moves")

// Decision is the outcome of one search.
type Decision struct {
	Column int
	// Score is the minimax value for the searching side, or the mean rollout
	// outcome of the chosen MCTS child in [-1, 1].
	Score  float64
	Metric metrics.SearchMetric
}
