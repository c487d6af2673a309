package agent

import (
	"context"
	"errors"
	"fmt"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/searcher"
	"connect4/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var (
	ErrNoLegalMoves    = searcher.ErrNoLegalMoves
	ErrUnknownKind     = errors.New("unknown agent kind")
	ErrHumanControlled = errors.New("side is human controlled")
	ErrInvalidSpec     = errors.New("invalid agent spec")
)

type Agent interface {
	Name() string
	// Choose returns one of legal for the player to move on b. b is never modified.
	Choose(ctx context.Context, b *game.Board, legal []int) (int, error)
}

// Decider is an Agent that also reports how it found its move.
type Decider interface {
	Agent
	Decide(ctx context.Context, b *game.Board, legal []int) (searcher.Decision, error)
}

// Decide asks a for a move, with search metrics when a reports them.
func Decide(ctx context.Context, a Agent, b *game.Board, legal []int) (searcher.Decision, error) {
	if d, ok := a.(Decider); ok {
		return d.Decide(ctx, b, legal)
	}
	collector := metrics.NewCollector()
	collector.Start(a.Name())
	column, err := a.Choose(ctx, b, legal)
	if err != nil {
		return searcher.Decision{}, err
	}
	return searcher.Decision{Column: column, Metric: collector.Complete()}, nil
}

type randomAgent struct {
	seeder *utils.Seeder
}

// NewRandom returns an agent picking uniformly among the legal columns.
func NewRandom(seed uint64) Agent {
	return randomAgent{seeder: utils.NewSeeder(seed)}
}

func (a randomAgent) Name() string { return string(Random) }

func (a randomAgent) Choose(ctx context.Context, b *game.Board, legal []int) (int, error) {
	decision, err := a.Decide(ctx, b, legal)
	return decision.Column, err
}

func (a randomAgent) Decide(ctx context.Context, b *game.Board, legal []int) (searcher.Decision, error) {
	if len(legal) == 0 {
		return searcher.Decision{}, ErrNoLegalMoves
	}
	collector := metrics.NewCollector()
	collector.Start(a.Name())
	column := legal[a.seeder.Rand().Intn(len(legal))]
	return searcher.Decision{Column: column, Metric: collector.Complete()}, nil
}

type minimaxAgent struct {
	minimax *searcher.Minimax
	seeder  *utils.Seeder
}

// NewMinimax returns an agent searching depth plies with alpha-beta for the
// player to move.
func NewMinimax(depth int, seed uint64) Agent {
	return minimaxAgent{
		minimax: searcher.NewMinimax(depth, searcher.WithMinimaxSeed(seed)),
		seeder:  utils.NewSeeder(seed),
	}
}

func (a minimaxAgent) Name() string {
	return fmt.Sprintf("%s(depth=%d)", Minimax, a.minimax.Depth())
}

func (a minimaxAgent) Choose(ctx context.Context, b *game.Board, legal []int) (int, error) {
	decision, err := a.Decide(ctx, b, legal)
	return decision.Column, err
}

func (a minimaxAgent) Decide(ctx context.Context, b *game.Board, legal []int) (searcher.Decision, error) {
	if len(legal) == 0 {
		return searcher.Decision{}, ErrNoLegalMoves
	}
	decision, err := a.minimax.FindNextMove(ctx, b, b.Turn())
	if err != nil {
		return searcher.Decision{}, err
	}
	decision.Column = ensureLegal(a.Name(), decision.Column, legal, a.seeder.Rand())
	return decision, nil
}

type mctsAgent struct {
	mcts   *searcher.MCTS
	seeder *utils.Seeder
}

// NewMCTS returns an agent running UCT with the given options.
func NewMCTS(seed uint64, options ...searcher.Option) Agent {
	options = append([]searcher.Option{searcher.WithSeed(seed)}, options...)
	return mctsAgent{
		mcts:   searcher.NewMCTS(options...),
		seeder: utils.NewSeeder(seed),
	}
}

func (a mctsAgent) Name() string {
	return fmt.Sprintf("%s(simulations=%d)", MCTS, a.mcts.Simulations())
}

func (a mctsAgent) Choose(ctx context.Context, b *game.Board, legal []int) (int, error) {
	decision, err := a.Decide(ctx, b, legal)
	return decision.Column, err
}

func (a mctsAgent) Decide(ctx context.Context, b *game.Board, legal []int) (searcher.Decision, error) {
	if len(legal) == 0 {
		return searcher.Decision{}, ErrNoLegalMoves
	}
	decision, err := a.mcts.FindNextMove(ctx, b)
	if err != nil {
		return searcher.Decision{}, err
	}
	decision.Column = ensureLegal(a.Name(), decision.Column, legal, a.seeder.Rand())
	return decision, nil
}

// ensureLegal keeps column if legal holds it and otherwise picks a random
// legal column.
func ensureLegal(name string, column int, legal []int, rng *rand.Rand) int {
	if utils.Contains(legal, column) {
		return column
	}
	fallback := legal[rng.Intn(len(legal))]
	log.Warn().Msgf("%s chose column %d outside %v, playing %d instead", name, column, legal, fallback)
	return fallback
}
