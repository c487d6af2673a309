package searcher

import (
	"context"
	"fmt"
	"math"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/utils"

	"github.com/rs/zerolog/log"
)

// WinScore exceeds any heuristic score. A won position is worth WinScore plus
// the remaining depth so that quicker wins rank higher.
const WinScore = 10_000_000_000_000

type MinimaxOption func(m *Minimax)

// Minimax is a depth-limited alpha-beta searcher. It keeps no state between
// calls besides its configuration and may be shared by concurrent games.
type Minimax struct {
	depth    int
	prune    bool
	evaluate game.Evaluate
	seeder   *utils.Seeder
}

// WithoutPruning searches the full tree. Only useful as a reference.
func WithoutPruning() MinimaxOption {
	return func(m *Minimax) {
		m.prune = false
	}
}

// WithMinimaxSeed seeds the random fallback used when no iteration completes
// before the context ends.
func WithMinimaxSeed(seed uint64) MinimaxOption {
	return func(m *Minimax) {
		m.seeder = utils.NewSeeder(seed)
	}
}

func WithEvaluationFn(evaluate game.Evaluate) MinimaxOption {
	return func(m *Minimax) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func NewMinimax(depth int, options ...MinimaxOption) *Minimax {
	if depth < 1 {
		panic("Must search at least one ply")
	}
	m := &Minimax{ // Default values
		depth:    depth,
		prune:    true,
		evaluate: game.ScorePosition,
		seeder:   utils.NewSeeder(0),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *Minimax) Depth() int { return m.depth }

// FindNextMove searches b on a private copy and returns the best column for
// maximizer with its value from maximizer's perspective. The search assumes
// maximizer moves first and the sides alternate from there, whatever the
// piece-count parity of b.
//
// When ctx carries a deadline the search deepens one ply at a time and keeps
// the deepest completed iteration. Cancellation never fails the search: if
// nothing completed, a random legal column is returned.
func (m *Minimax) FindNextMove(ctx context.Context, b *game.Board, maximizer game.Player) (Decision, error) {
	legal := b.LegalMoves()
	if len(legal) == 0 {
		return Decision{}, ErrNoLegalMoves
	}
	if maximizer != game.P1 && maximizer != game.P2 {
		return Decision{}, fmt.Errorf("%w: no such player %d", game.ErrInvalidMove, maximizer)
	}

	collector := metrics.NewCollector()
	collector.Start("minimax")
	s := &search{
		done:      ctx.Done(),
		maximizer: maximizer,
		prune:     m.prune,
		evaluate:  m.evaluate,
		metrics:   collector,
	}

	start := m.depth
	if _, ok := ctx.Deadline(); ok {
		start = 1
	}

	decision := Decision{Column: -1}
	for depth := start; depth <= m.depth; depth++ {
		column, score := s.minimax(b.Copy(), depth, math.MinInt, math.MaxInt, maximizer)
		if s.aborted {
			break
		}
		decision.Column, decision.Score = column, float64(score)
		collector.ObserveDepth(depth)
		if score >= WinScore || score <= -WinScore { // Forced result, deeper search cannot change it
			break
		}
	}

	if decision.Column < 0 {
		decision.Column = legal[m.seeder.Rand().Intn(len(legal))]
		log.Warn().Msgf("minimax: no iteration completed, playing random column %d", decision.Column)
	}
	decision.Metric = collector.Complete()

	log.Debug().
		Int("column", decision.Column).
		Float64("score", decision.Score).
		Int("depth", decision.Metric.Depth).
		Int("nodes", decision.Metric.Nodes).
		Dur("elapsed", decision.Metric.Duration).
		Msg("minimax decision")
	return decision, nil
}

type search struct {
	done      <-chan struct{}
	maximizer game.Player
	prune     bool
	evaluate  game.Evaluate
	metrics   metrics.Collector
	aborted   bool
}

func (s *search) cancelled() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// minimax returns the best column for mover (-1 at leaves) and the value of b
// from the maximizer's perspective. Columns are tried in ascending order and
// only a strictly better value replaces the current best, so ties go to the
// lowest column.
func (s *search) minimax(b *game.Board, depth, alpha, beta int, mover game.Player) (int, int) {
	s.metrics.AddNodes(1)
	if s.cancelled() {
		s.aborted = true
		return -1, 0
	}

	if b.IsTerminal() {
		switch b.Winner() {
		case s.maximizer:
			return -1, WinScore + depth
		case s.maximizer.Opponent():
			return -1, -(WinScore + depth)
		default:
			return -1, 0
		}
	}
	if depth == 0 {
		return -1, s.evaluate(b, s.maximizer)
	}

	maximizing := mover == s.maximizer
	column, best := -1, math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for _, col := range b.LegalMoves() {
		child := b.Copy()
		if err := child.Apply(col, mover); err != nil {
			panic(err) // col comes from LegalMoves
		}
		_, score := s.minimax(child, depth-1, alpha, beta, mover.Opponent())
		if s.aborted {
			return -1, 0
		}

		if maximizing {
			if score > best {
				column, best = col, score
			}
			alpha = max(alpha, best)
		} else {
			if score < best {
				column, best = col, score
			}
			beta = min(beta, best)
		}
		if s.prune && alpha >= beta {
			break
		}
	}
	return column, best
}
