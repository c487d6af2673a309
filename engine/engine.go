package engine

import (
	"context"

	"connect4/experiments/metrics"
	"connect4/game"
)

type Engine interface {
	// Run plays a game till there's a winner, a draw or the move limit is reached
	Run(ctx context.Context) (winner game.Player, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
