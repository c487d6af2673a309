package engine

import (
	"context"
	"net/http/httptest"
	"testing"

	"connect4/communication"
	"connect4/communication/client"
	"connect4/communication/server"
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/gamemaster"
	"connect4/searcher/agent"

	"github.com/stretchr/testify/require"
)

var (
	_ Engine = (*Local)(nil)
	_ Engine = (*Remote)(nil)
)

type scriptedAgent struct {
	columns []int
	next    *int
}

func newScriptedAgent(columns ...int) scriptedAgent {
	return scriptedAgent{columns: columns, next: new(int)}
}

func (a scriptedAgent) Name() string { return "scripted" }

func (a scriptedAgent) Choose(ctx context.Context, b *game.Board, legal []int) (int, error) {
	column := a.columns[*a.next]
	*a.next++
	return column, nil
}

func newBoard(t *testing.T) *game.Board {
	t.Helper()
	b, err := game.NewBoard(6, 7)
	require.NoError(t, err)
	return b
}

func TestLocalEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("playing until a win", func(t *testing.T) {
		b := newBoard(t)
		observed := 0
		e := LocalEngine(b, newScriptedAgent(0, 1, 2, 3), newScriptedAgent(6, 6, 6),
			WithObserver(func(board *game.Board, move metrics.MoveMetric) {
				observed++
				require.Equal(t, observed, board.Moves())
			}))

		winner, gameMetric, moveMetrics, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.P1, winner)
		require.Equal(t, 7, observed)
		require.Len(t, moveMetrics, 7)
		require.Equal(t, 1, gameMetric.StartingPlayer)
		require.Equal(t, 1, gameMetric.Winner)
		require.Equal(t, 7, gameMetric.TotalMoves)
		require.Equal(t, 3, moveMetrics[6].Column)
		require.Equal(t, 1, moveMetrics[6].Player)
		require.Equal(t, 2, moveMetrics[5].Player)
		require.True(t, b.IsTerminal(), "Engine should play on the given board")
	})

	t.Run("playing random agents to the end", func(t *testing.T) {
		for seed := uint64(1); seed <= 10; seed++ {
			e := LocalEngine(newBoard(t), agent.NewRandom(seed), agent.NewRandom(seed+100))

			winner, gameMetric, moveMetrics, err := e.Run(ctx)

			require.NoError(t, err)
			require.True(t, e.Board().IsTerminal())
			require.Equal(t, winner.Number(), gameMetric.Winner)
			require.Len(t, moveMetrics, e.Board().Moves())
			for i, move := range moveMetrics {
				require.Equal(t, i+1, move.Step)
				require.Equal(t, "random", move.Searcher)
			}
		}
	})

	t.Run("minimax beats random", func(t *testing.T) {
		e := LocalEngine(newBoard(t), agent.NewMinimax(4, 1), agent.NewRandom(1))

		winner, _, moveMetrics, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.P1, winner)
		require.Equal(t, "minimax", moveMetrics[0].Searcher)
		require.Equal(t, 4, moveMetrics[0].Depth)
	})

	t.Run("stopping at the move limit", func(t *testing.T) {
		e := LocalEngine(newBoard(t), agent.NewRandom(1), agent.NewRandom(2), WithMaxMoves(5))

		winner, gameMetric, _, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.Empty, winner)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.Equal(t, 0, gameMetric.Winner)
		require.False(t, e.Board().IsTerminal())
	})

	t.Run("failing on an illegal move", func(t *testing.T) {
		b := newBoard(t)
		e := LocalEngine(b, newScriptedAgent(9), agent.NewRandom(1))

		_, _, _, err := e.Run(ctx)

		require.ErrorIs(t, err, game.ErrInvalidMove)
		require.Equal(t, 0, b.Moves())
	})

	t.Run("stopping on a cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, _, moveMetrics, err := LocalEngine(newBoard(t), agent.NewRandom(1), agent.NewRandom(2)).Run(cancelled)

		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, moveMetrics)
	})

	t.Run("panics without agents", func(t *testing.T) {
		require.Panics(t, func() {
			LocalEngine(newBoard(t), nil, agent.NewRandom(1))
		})
	})
}

func TestRemoteEngine(t *testing.T) {
	gm := gamemaster.NewGameMaster()
	ts := httptest.NewServer(server.NewServer(gm))
	defer ts.Close()
	c := client.NewClient(ts.URL, ts.Client())

	states := 0
	e := RemoteEngine(c, communication.GameConfig{
		P1Agent:         agent.Random,
		P2Agent:         agent.MCTS,
		MCTSSimulations: 30,
	}, func(state communication.GameState) { states++ })

	winner, gameMetric, moveMetrics, err := e.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, winner.Number(), gameMetric.Winner)
	require.Len(t, moveMetrics, states)
	require.Equal(t, len(moveMetrics), gameMetric.TotalMoves)
	require.Equal(t, 0, gm.Len(), "Finished games should be deleted")
}
