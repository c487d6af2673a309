package engine

import (
	"context"
	"fmt"
	"time"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Observer is called after every applied move with the updated board.
type Observer func(b *game.Board, move metrics.MoveMetric)

type Option func(e *Local)

func WithObserver(observer Observer) Option {
	return func(e *Local) {
		e.observer = observer
	}
}

// WithMaxMoves stops the game after n moves. The default is the board size.
func WithMaxMoves(n int) Option {
	return func(e *Local) {
		if n > 0 {
			e.maxMoves = n
		}
	}
}

// Local plays a game in process between two agents. It owns the
// authoritative board, agents only ever see copies.
type Local struct {
	board    *game.Board
	agents   map[game.Player]agent.Agent
	maxMoves int
	observer Observer
}

func LocalEngine(board *game.Board, p1, p2 agent.Agent, options ...Option) *Local {
	if p1 == nil || p2 == nil {
		panic("need an agent for each player")
	}
	e := &Local{
		board:    board,
		agents:   map[game.Player]agent.Agent{game.P1: p1, game.P2: p2},
		maxMoves: board.Rows() * board.Cols(),
		observer: func(*game.Board, metrics.MoveMetric) {},
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Local) Board() *game.Board { return e.board }

// Run executes the entire game loop until the game ends.
func (e *Local) Run(ctx context.Context) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.board.Turn().Number(),
		StartTime:      time.Now(),
	}
	log.Info().Msgf("player %d is starting", gameMetric.StartingPlayer)

	var moveMetrics []metrics.MoveMetric
	for step := 1; !e.board.IsTerminal() && step <= e.maxMoves; step++ {
		if err := ctx.Err(); err != nil {
			return game.Empty, gameMetric, moveMetrics, err
		}

		player := e.board.Turn()
		a := e.agents[player]
		decision, err := agent.Decide(ctx, a, e.board.Copy(), e.board.LegalMoves())
		if err != nil {
			return game.Empty, gameMetric, moveMetrics, fmt.Errorf("%s: %w", a.Name(), err)
		}
		if err := e.board.Play(decision.Column); err != nil {
			return game.Empty, gameMetric, moveMetrics, fmt.Errorf("%s: %w", a.Name(), err)
		}

		move := metrics.MoveMetric{
			Step:         step,
			Player:       player.Number(),
			Column:       decision.Column,
			SearchMetric: decision.Metric,
		}
		moveMetrics = append(moveMetrics, move)
		log.Debug().Msgf("step %d: player %d (%s) played column %d", step, move.Player, a.Name(), move.Column)
		e.observer(e.board, move)
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	gameMetric.Winner = e.board.Winner().Number()

	switch {
	case e.board.Winner() != game.Empty:
		log.Info().Msgf("game ended after %d moves: player %d wins", gameMetric.TotalMoves, gameMetric.Winner)
	case e.board.IsDraw():
		log.Info().Msgf("game ended after %d moves: draw", gameMetric.TotalMoves)
	default:
		log.Info().Msgf("stopped after %d moves (no winner yet)", gameMetric.TotalMoves)
	}
	return e.board.Winner(), gameMetric, moveMetrics, nil
}
