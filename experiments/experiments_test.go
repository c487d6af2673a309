package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"connect4/experiments/metrics"
	"connect4/searcher/agent"

	"github.com/stretchr/testify/require"
)

var (
	random  = agent.Spec{Kind: agent.Random}
	minimax = agent.Spec{Kind: agent.Minimax, Depth: 3}
	mcts    = agent.Spec{Kind: agent.MCTS, Simulations: 50}
)

func TestMatchups(t *testing.T) {
	require.Equal(t, []Matchup{{P1: random, P2: minimax}, {P1: minimax, P2: random}}, BothOrders(random, minimax))

	matchUps := RoundRobin(random, minimax, mcts)
	require.Len(t, matchUps, 6)
	for _, m := range matchUps {
		require.NotEqual(t, m.P1, m.P2)
	}
	require.Equal(t, "random vs minimax(depth=3)", matchUps[0].String())
}

func TestRunArena(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregating results", func(t *testing.T) {
		results, err := RunArena(ctx, Options{Games: 4, Concurrency: 3, Seed: 11}, BothOrders(minimax, random))

		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			require.Equal(t, 4, r.Games())
		}
		require.Equal(t, 4, results[0].P1Wins, "Minimax should beat random as first player")
		require.Equal(t, 4, results[1].P2Wins, "Minimax should beat random as second player")
	})

	t.Run("writing records", func(t *testing.T) {
		dir := t.TempDir()
		writer, err := metrics.NewWriter("csv", dir)
		require.NoError(t, err)

		_, err = RunArena(ctx, Options{Games: 2, Concurrency: 2, Rows: 4, Cols: 5, Seed: 3, Writer: writer},
			[]Matchup{{P1: mcts, P2: random}})

		require.NoError(t, err)
		for _, name := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv"} {
			info, err := os.Stat(filepath.Join(dir, name))
			require.NoError(t, err, name)
			require.NotZero(t, info.Size(), name)
		}
	})

	t.Run("rejecting human sides", func(t *testing.T) {
		_, err := RunArena(ctx, Options{Games: 1}, []Matchup{{P1: agent.Spec{Kind: agent.Human}, P2: random}})

		require.ErrorIs(t, err, agent.ErrHumanControlled)
	})

	t.Run("rejecting bad dimensions", func(t *testing.T) {
		_, err := RunArena(ctx, Options{Games: 1, Rows: -2}, BothOrders(random, random))

		require.Error(t, err)
	})

	t.Run("stopping on a cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := RunArena(cancelled, Options{Games: 2}, BothOrders(random, random))

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestAgentConfigs(t *testing.T) {
	configs, ids := agentConfigs(RoundRobin(random, mcts))

	require.Len(t, configs, 2)
	require.Equal(t, 1, ids[random])
	require.Equal(t, 2, ids[mcts])
	require.Equal(t, "mcts(simulations=50)", configs[1].Name)
	require.Equal(t, 50, configs[1].Simulations)
}

func TestMeasureThroughput(t *testing.T) {
	result, err := MeasureThroughput(context.Background(), mcts, 5, 8, 1)

	require.NoError(t, err)
	require.Equal(t, 5, result.Decisions)
	require.Equal(t, 250, result.Episodes)
	require.Positive(t, result.Nodes)
	require.Positive(t, result.NodesPerSecond())

	_, err = MeasureThroughput(context.Background(), agent.Spec{Kind: agent.Human}, 1, 0, 1)
	require.ErrorIs(t, err, agent.ErrHumanControlled)
}
