package engine

import (
	"context"
	"fmt"
	"time"

	"connect4/communication"
	"connect4/communication/client"
	"connect4/experiments/metrics"
	"connect4/game"

	"github.com/rs/zerolog/log"
)

// Remote plays a game on a game server where the server's agents move for
// both sides.
type Remote struct {
	client   *client.Client
	config   communication.GameConfig
	observer func(state communication.GameState)
}

func RemoteEngine(c *client.Client, cfg communication.GameConfig, observer func(communication.GameState)) *Remote {
	if observer == nil {
		observer = func(communication.GameState) {}
	}
	return &Remote{client: c, config: cfg, observer: observer}
}

// Run starts a game, requests AI moves until it ends and deletes it.
func (e *Remote) Run(ctx context.Context) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{StartingPlayer: game.P1.Number(), StartTime: time.Now()}

	state, err := e.client.Start(ctx, e.config)
	if err != nil {
		return game.Empty, gameMetric, nil, fmt.Errorf("starting game: %w", err)
	}
	defer func() {
		if err := e.client.Delete(context.Background(), state.GameID); err != nil {
			log.Warn().Err(err).Msgf("deleting game %s", state.GameID)
		}
	}()
	log.Info().Msgf("playing game %s", state.GameID)

	var moveMetrics []metrics.MoveMetric
	for step := 1; !state.IsTerminal; step++ {
		player := game.Player(state.CurrentPlayer)
		start := time.Now()
		if state, err = e.client.AIMove(ctx, state.GameID); err != nil {
			return game.Empty, gameMetric, moveMetrics, fmt.Errorf("step %d: %w", step, err)
		}

		move := metrics.MoveMetric{Step: step, Player: player.Number(), Column: -1}
		if state.LastMove != nil {
			move.Column = *state.LastMove
		}
		move.Searcher = "remote"
		move.Duration = time.Since(start)
		moveMetrics = append(moveMetrics, move)
		e.observer(state)
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)

	winner := game.Empty
	if state.Winner != nil {
		winner = game.Player(*state.Winner)
	}
	gameMetric.Winner = winner.Number()
	log.Info().Msgf("game %s: %s", state.GameID, state.Message)
	return winner, gameMetric, moveMetrics, nil
}
