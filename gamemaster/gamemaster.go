package gamemaster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"connect4/game"
	"connect4/meta"
	"connect4/searcher/agent"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameFinished = errors.New("game is already finished")
	ErrNotAIPlayer  = errors.New("current player is not an AI agent")
)

// Config describes a new game: board size and who plays each side.
type Config struct {
	Rows int
	Cols int
	P1   agent.Spec
	P2   agent.Spec
}

func DefaultConfig() Config {
	return Config{
		Rows: meta.ROWS,
		Cols: meta.COLS,
		P1:   agent.Spec{Kind: agent.Human},
		P2:   agent.Spec{Kind: agent.Random},
	}
}

// Limits bound the search an AI side may run for one move.
type Limits struct {
	MoveTimeLimit  time.Duration // Applied to every AI side without a shorter limit
	MaxDepth       int
	MaxSimulations int
}

func DefaultLimits() Limits {
	return Limits{
		MoveTimeLimit:  meta.AI_TIME_LIMIT,
		MaxDepth:       meta.MAX_MINIMAX_DEPTH,
		MaxSimulations: meta.MAX_MCTS_SIMULATIONS,
	}
}

// apply checks spec against the limits and caps its time limit.
func (l Limits) apply(spec agent.Spec) (agent.Spec, error) {
	if spec.Kind == agent.Human {
		return spec, nil
	}
	if l.MaxDepth > 0 && spec.Depth > l.MaxDepth {
		return spec, fmt.Errorf("%w: minimax depth %d above %d", agent.ErrInvalidSpec, spec.Depth, l.MaxDepth)
	}
	if l.MaxSimulations > 0 && spec.Simulations > l.MaxSimulations {
		return spec, fmt.Errorf("%w: mcts simulations %d above %d", agent.ErrInvalidSpec, spec.Simulations, l.MaxSimulations)
	}
	if l.MoveTimeLimit > 0 && (spec.TimeLimit <= 0 || spec.TimeLimit > l.MoveTimeLimit) {
		spec.TimeLimit = l.MoveTimeLimit
	}
	return spec, nil
}

type Option func(gm *GameMaster)

func WithLimits(limits Limits) Option {
	return func(gm *GameMaster) {
		gm.limits = limits
	}
}

// GameMaster owns every live game. Sessions are created and deleted
// explicitly and live in memory only.
type GameMaster struct {
	mu       sync.RWMutex
	sessions map[string]*session
	limits   Limits
	logger   zerolog.Logger
}

func NewGameMaster(options ...Option) *GameMaster {
	gm := &GameMaster{
		sessions: make(map[string]*session),
		limits:   DefaultLimits(),
		logger:   log.With().Str("component", "gamemaster").Logger(),
	}
	for _, option := range options {
		option(gm)
	}
	return gm
}

// Create starts a game and returns its first snapshot.
func (gm *GameMaster) Create(cfg Config) (Snapshot, error) {
	board, err := game.NewBoard(cfg.Rows, cfg.Cols)
	if err != nil {
		return Snapshot{}, err
	}

	s := &session{
		id:       uuid.NewString(),
		board:    board,
		agents:   make(map[game.Player]agent.Agent, 2),
		lastMove: -1,
	}
	specs := []agent.Spec{cfg.P1, cfg.P2}
	for i, player := range []game.Player{game.P1, game.P2} {
		spec, err := gm.limits.apply(specs[i])
		if err != nil {
			return Snapshot{}, fmt.Errorf("player %d: %w", player.Number(), err)
		}
		a, err := agent.New(spec)
		if errors.Is(err, agent.ErrHumanControlled) {
			continue
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("player %d: %w", player.Number(), err)
		}
		s.agents[player] = a
	}

	gm.mu.Lock()
	gm.sessions[s.id] = s
	gm.mu.Unlock()

	gm.logger.Info().
		Str("game", s.id).
		Str("p1", cfg.P1.String()).
		Str("p2", cfg.P2.String()).
		Msgf("created %dx%d game", cfg.Rows, cfg.Cols)

	snapshot := s.snapshot()
	snapshot.Message = "Game started"
	return snapshot, nil
}

func (gm *GameMaster) Get(id string) (Snapshot, error) {
	s, err := gm.find(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// Move plays col for the side to move, whoever controls it.
func (gm *GameMaster) Move(id string, col int) (Snapshot, error) {
	s, err := gm.find(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.play(col); err != nil {
		return Snapshot{}, err
	}
	gm.logger.Debug().Str("game", s.id).Int("column", col).Msg("human move")
	return s.snapshot(), nil
}

// AIMove asks the agent of the side to move for a column and plays it. The
// agent searches a copy, the session board is only touched once it returns
// and only if ctx is still live.
func (gm *GameMaster) AIMove(ctx context.Context, id string) (Snapshot, error) {
	s, err := gm.find(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board.IsTerminal() {
		return Snapshot{}, ErrGameFinished
	}
	a, ok := s.agents[s.board.Turn()]
	if !ok {
		return Snapshot{}, ErrNotAIPlayer
	}

	decision, err := agent.Decide(ctx, a, s.board.Copy(), s.board.LegalMoves())
	if err != nil {
		return Snapshot{}, err
	}
	// The caller is gone, nobody would see the move
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if err := s.play(decision.Column); err != nil {
		return Snapshot{}, err
	}

	gm.logger.Debug().
		Str("game", s.id).
		Str("agent", a.Name()).
		Int("column", decision.Column).
		Dur("elapsed", decision.Metric.Duration).
		Msg("ai move")
	return s.snapshot(), nil
}

// Delete drops a game. Deleting an unknown game is not an error.
func (gm *GameMaster) Delete(id string) bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	_, ok := gm.sessions[id]
	delete(gm.sessions, id)
	if ok {
		gm.logger.Info().Str("game", id).Msg("deleted game")
	}
	return ok
}

// Len is the number of live games.
func (gm *GameMaster) Len() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

func (gm *GameMaster) find(id string) (*session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, ok := gm.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return s, nil
}
