package metrics

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

var (
	start   = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	configs = []AgentConfig{
		{ID: 1, Name: "minimax(depth=4)", Kind: "minimax", Depth: 4, Seed: 7},
		{ID: 2, Name: "mcts(simulations=200)", Kind: "mcts", Simulations: 200, TimeLimit: time.Second},
	}
	games = []GameRecord{
		{ID: 1, Agent1: 1, Agent2: 2, GameMetric: GameMetric{
			StartingPlayer: 1, Winner: 1, StartTime: start, EndTime: start.Add(time.Second),
			Duration: time.Second, TotalMoves: 2,
		}},
	}
	moves = []MoveRecord{
		{Game: 1, MoveMetric: MoveMetric{Step: 1, Player: 1, Column: 3,
			SearchMetric: SearchMetric{Searcher: "minimax(depth=4)", Duration: time.Millisecond, Nodes: 120, Depth: 4}}},
		{Game: 1, MoveMetric: MoveMetric{Step: 2, Player: 2, Column: 4,
			SearchMetric: SearchMetric{Searcher: "mcts(simulations=200)", Duration: 2 * time.Millisecond, Episodes: 200, Nodes: 201, Depth: 9}}},
	}
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func readParquet[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	stat, err := f.Stat()
	require.NoError(t, err)

	pf, err := parquet.OpenFile(f, stat.Size())
	require.NoError(t, err)
	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestNewWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "run")

	w, err := NewWriter("csv", dir)
	require.NoError(t, err)
	require.Equal(t, dir, w.Dir())
	require.DirExists(t, dir)

	_, err = NewWriter("xlsx", dir)
	require.Error(t, err)
}

func TestCSVWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter("csv", dir)
	require.NoError(t, err)

	require.NoError(t, w.WriteAgentConfigs(configs))
	require.NoError(t, w.WriteGameRecords(games))
	require.NoError(t, w.WriteMoveRecords(moves))

	agents := readCSV(t, filepath.Join(dir, "agent_configs.csv"))
	require.Len(t, agents, 3, "Header plus one row per agent")
	require.Equal(t, []string{"id", "name", "kind", "depth", "simulations", "time_limit", "seed"}, agents[0])
	require.Equal(t, []string{"2", "mcts(simulations=200)", "mcts", "0", "200", "1s", "0"}, agents[2])

	gameRows := readCSV(t, filepath.Join(dir, "game_records.csv"))
	require.Len(t, gameRows, 2)
	require.Equal(t, "1", gameRows[1][4])
	require.Equal(t, "2024-05-01T12:00:00Z", gameRows[1][5])
	require.Equal(t, "2", gameRows[1][8])

	moveRows := readCSV(t, filepath.Join(dir, "move_records.csv"))
	require.Len(t, moveRows, 3)
	require.Equal(t, []string{"1", "2", "2", "4", "mcts(simulations=200)", "2ms", "200", "201", "9"}, moveRows[2])
}

func TestParquetWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter("parquet", dir)
	require.NoError(t, err)

	require.NoError(t, w.WriteAgentConfigs(configs))
	require.NoError(t, w.WriteGameRecords(games))
	require.NoError(t, w.WriteMoveRecords(moves))

	agents := readParquet[AgentConfigRow](t, filepath.Join(dir, "agent_configs.parquet"))
	require.Equal(t, []AgentConfigRow{
		{ID: 1, Name: "minimax(depth=4)", Kind: "minimax", Depth: 4, Seed: 7},
		{ID: 2, Name: "mcts(simulations=200)", Kind: "mcts", Simulations: 200, TimeLimitNs: int64(time.Second)},
	}, agents)

	gameRows := readParquet[GameRow](t, filepath.Join(dir, "game_records.parquet"))
	require.Len(t, gameRows, 1)
	require.Equal(t, start.UnixNano(), gameRows[0].StartNs)
	require.Equal(t, int32(1), gameRows[0].Winner)

	moveRows := readParquet[MoveRow](t, filepath.Join(dir, "move_records.parquet"))
	require.Len(t, moveRows, 2)
	require.Equal(t, MoveRow{
		Game: 1, Step: 2, Player: 2, Column: 4, Searcher: "mcts(simulations=200)",
		DurationNs: int64(2 * time.Millisecond), Episodes: 200, Nodes: 201, Depth: 9,
	}, moveRows[1])

	require.NoFileExists(t, filepath.Join(dir, "move_records.parquet.tmp"))
}

type failingCloser struct {
	bytes.Buffer
}

func (f *failingCloser) Close() error { return errors.New("disk full") }

func TestCSVWriterCloseError(t *testing.T) {
	file := &failingCloser{}
	w := &csvWriter{baseDir: t.TempDir(), create: func(string) (io.WriteCloser, error) { return file, nil }}

	err := w.WriteGameRecords(games)

	require.ErrorContains(t, err, "failed to close game_records.csv")
	require.ErrorContains(t, err, "disk full")
	require.Contains(t, file.String(), "starting_player", "Rows should be written before closing")
}
