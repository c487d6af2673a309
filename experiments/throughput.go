package experiments

import (
	"context"
	"fmt"
	"time"

	"connect4/game"
	"connect4/meta"
	"connect4/searcher/agent"
	"connect4/utils"

	"github.com/rs/zerolog/log"
)

// Throughput sums the search work of an agent over a set of positions.
type Throughput struct {
	Spec      agent.Spec
	Decisions int
	Duration  time.Duration
	Episodes  int
	Nodes     int
}

func (t Throughput) NodesPerSecond() float64 {
	if t.Duration <= 0 {
		return 0
	}
	return float64(t.Nodes) / t.Duration.Seconds()
}

func (t Throughput) EpisodesPerSecond() float64 {
	if t.Duration <= 0 {
		return 0
	}
	return float64(t.Episodes) / t.Duration.Seconds()
}

// MeasureThroughput asks spec for a move on positions random openings of up
// to maxPlies moves each.
func MeasureThroughput(ctx context.Context, spec agent.Spec, positions, maxPlies int, seed uint64) (Throughput, error) {
	a, err := agent.New(spec)
	if err != nil {
		return Throughput{}, fmt.Errorf("%s: %w", spec, err)
	}

	rng := utils.NewSeeder(seed).Rand()
	result := Throughput{Spec: spec}

	log.Info().Msgf("starting throughput experiment for %s...", spec)
	for i := 0; i < positions; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		b, err := game.NewBoard(meta.ROWS, meta.COLS)
		if err != nil {
			return result, err
		}
		plies := 0
		if maxPlies > 0 {
			plies = rng.Intn(maxPlies + 1)
		}
		for p := 0; p < plies; p++ {
			legal := b.LegalMoves()
			next, err := b.Next(legal[rng.Intn(len(legal))])
			if err != nil {
				return result, err
			}
			if next.IsTerminal() {
				break
			}
			b = next
		}

		decision, err := agent.Decide(ctx, a, b, b.LegalMoves())
		if err != nil {
			return result, err
		}
		result.Decisions++
		result.Duration += decision.Metric.Duration
		result.Episodes += decision.Metric.Episodes
		result.Nodes += decision.Metric.Nodes
	}

	log.Info().Msgf("completed throughput experiment for %s: %.0f nodes/s, %.0f episodes/s",
		spec, result.NodesPerSecond(), result.EpisodesPerSecond())
	return result, nil
}
