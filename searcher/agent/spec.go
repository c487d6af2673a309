package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"connect4/game"
	"connect4/meta"
	"connect4/searcher"
)

type Kind string

const (
	Human   Kind = "human"
	Random  Kind = "random"
	Minimax Kind = "minimax"
	MCTS    Kind = "mcts"
)

func ParseKind(s string) (Kind, error) {
	switch kind := Kind(strings.ToLower(strings.TrimSpace(s))); kind {
	case Human, Random, Minimax, MCTS:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Spec configures one side of a game. Zero values select the defaults.
type Spec struct {
	Kind        Kind          `yaml:"kind" json:"kind"`
	Depth       int           `yaml:"depth" json:"depth,omitempty"`
	Simulations int           `yaml:"simulations" json:"simulations,omitempty"`
	TimeLimit   time.Duration `yaml:"time-limit" json:"time_limit,omitempty"`
	Seed        uint64        `yaml:"seed" json:"seed,omitempty"`
}

func (s Spec) String() string {
	switch s.Kind {
	case Minimax:
		return fmt.Sprintf("%s(depth=%d)", s.Kind, s.depth())
	case MCTS:
		return fmt.Sprintf("%s(simulations=%d)", s.Kind, s.simulations())
	default:
		return string(s.Kind)
	}
}

func (s Spec) depth() int {
	if s.Depth == 0 {
		return meta.MINIMAX_DEPTH
	}
	return s.Depth
}

func (s Spec) simulations() int {
	if s.Simulations == 0 {
		return meta.MCTS_SIMULATIONS
	}
	return s.Simulations
}

// New builds the agent described by spec. A human side has no agent and
// yields ErrHumanControlled.
func New(spec Spec) (Agent, error) {
	if spec.TimeLimit < 0 {
		return nil, fmt.Errorf("%w: time limit %s", ErrInvalidSpec, spec.TimeLimit)
	}

	switch spec.Kind {
	case Human:
		return nil, ErrHumanControlled
	case Random:
		return NewRandom(spec.Seed), nil
	case Minimax:
		if spec.depth() < 1 {
			return nil, fmt.Errorf("%w: minimax depth %d", ErrInvalidSpec, spec.Depth)
		}
		a := NewMinimax(spec.depth(), spec.Seed)
		if spec.TimeLimit > 0 {
			return WithTimeLimit(a.(Decider), spec.TimeLimit), nil
		}
		return a, nil
	case MCTS:
		if spec.simulations() < 1 {
			return nil, fmt.Errorf("%w: mcts simulations %d", ErrInvalidSpec, spec.Simulations)
		}
		return NewMCTS(spec.Seed, searcher.WithSimulations(spec.simulations()), searcher.WithDuration(spec.TimeLimit)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
}

type timeLimited struct {
	Decider
	limit time.Duration
}

// WithTimeLimit bounds every decision of a by limit. Searchers return their
// best move so far when the limit expires.
func WithTimeLimit(a Decider, limit time.Duration) Decider {
	return timeLimited{Decider: a, limit: limit}
}

func (a timeLimited) Choose(ctx context.Context, b *game.Board, legal []int) (int, error) {
	decision, err := a.Decide(ctx, b, legal)
	return decision.Column, err
}

func (a timeLimited) Decide(ctx context.Context, b *game.Board, legal []int) (searcher.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, a.limit)
	defer cancel()
	return a.Decider.Decide(ctx, b, legal)
}
