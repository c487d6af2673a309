package searcher

import (
	"context"
	"time"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(mcts *MCTS)

// MCTS is a single-threaded UCT searcher. Every call builds a fresh tree that
// is discarded once the move is chosen.
type MCTS struct {
	simulations int
	duration    time.Duration
	exploration float64
	seeder      *utils.Seeder
	metrics     metrics.Collector
}

func WithSimulations(simulations int) Option {
	return func(m *MCTS) {
		if simulations > 0 {
			m.simulations = simulations
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seeder = utils.NewSeeder(seed)
	}
}

// WithMetrics reports into collector instead of a per-search one. The
// collector is then shared, so the searcher should not run concurrently.
func WithMetrics(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		exploration: DefaultExploration,
		seeder:      utils.NewSeeder(0),
	}
	for _, option := range options {
		option(m)
	}
	if m.simulations <= 0 && m.duration <= 0 {
		panic("Must specify search simulations or duration")
	}
	return m
}

func (m *MCTS) Simulations() int { return m.simulations }

// FindNextMove runs simulations from b until the simulation budget, the
// duration or ctx runs out, whichever comes first, and returns the most
// visited root child. At least one simulation always runs.
func (m *MCTS) FindNextMove(ctx context.Context, b *game.Board) (Decision, error) {
	if len(b.LegalMoves()) == 0 {
		return Decision{}, ErrNoLegalMoves
	}

	if m.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.duration)
		defer cancel()
	}

	collector := m.metrics
	if collector == nil {
		collector = metrics.NewCollector()
	}
	collector.Start("mcts")

	rng := m.seeder.Rand()
	root := newNode(nil, -1, b.Copy())
	player := root.board.Turn() // Parity decides who is to move at the root

	for i := 0; m.simulations <= 0 || i < m.simulations; i++ {
		if i > 0 && ctx.Err() != nil {
			break
		}
		depth := simulate(root, player, m.exploration, rng)
		collector.AddEpisode()
		collector.ObserveDepth(depth)
	}
	collector.AddNodes(root.size())

	best := root.findBestChild()
	decision := Decision{
		Column: best.move,
		Score:  best.mean(),
		Metric: collector.Complete(),
	}

	log.Debug().
		Int("column", decision.Column).
		Int("visits", best.visits).
		Float64("mean", decision.Score).
		Int("episodes", decision.Metric.Episodes).
		Dur("elapsed", decision.Metric.Duration).
		Msg("mcts decision")
	return decision, nil
}

// simulate runs one selection, expansion, rollout and backup pass, returning
// the depth of the node the rollout started from.
func simulate(root *node, player game.Player, c float64, rng *rand.Rand) int {
	leaf, depth := selectThenExpand(root, c)
	outcome := rollout(leaf.board, player, rng)
	backup(leaf, player, outcome)
	return depth
}

// selectThenExpand descends by UCB1 through fully expanded nodes and expands
// the first node with untried columns. It stops at terminal nodes.
func selectThenExpand(root *node, c float64) (*node, int) {
	n, depth := root, 0
	for !n.isTerminal() {
		if n.isExpandable() {
			return n.expand(), depth + 1
		}
		n = n.selectChild(c)
		depth++
	}
	return n, depth
}

// rollout plays uniformly random moves on a copy of b until the game ends and
// returns the outcome for player.
func rollout(b *game.Board, player game.Player, rng *rand.Rand) float64 {
	if !b.IsTerminal() {
		b = b.Copy()
		moves := make([]int, 0, b.Cols())
		for !b.IsTerminal() {
			moves = b.AppendLegalMoves(moves[:0])
			if err := b.Play(moves[rng.Intn(len(moves))]); err != nil {
				panic(err)
			}
		}
	}

	switch b.Winner() {
	case player:
		return Win
	case player.Opponent():
		return Loss
	default:
		return Draw
	}
}

// backup credits outcome, given for player, along the path to the root. Each
// node stores it from the perspective of the player who moved into it, so the
// reward flips sign at every ply.
func backup(leaf *node, player game.Player, outcome float64) {
	reward := outcome
	if leaf.mover() != player {
		reward = -reward
	}
	for n := leaf; n != nil; n = n.parent {
		n.visits++
		n.value += reward
		reward = -reward
	}
}
