package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// AgentConfig describes one arena participant.
type AgentConfig struct {
	ID          int
	Name        string
	Kind        string
	Depth       int
	Simulations int
	TimeLimit   time.Duration
	Seed        uint64
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID, plays first
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// Writer stores the results of one experiment.
type Writer interface {
	Dir() string
	WriteAgentConfigs(configs []AgentConfig) error
	WriteGameRecords(records []GameRecord) error
	WriteMoveRecords(records []MoveRecord) error
}

// NewWriter creates dir and returns a writer storing files of the given
// format ("csv" or "parquet") in it.
func NewWriter(format, dir string) (Writer, error) {
	if format != "csv" && format != "parquet" {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if format == "parquet" {
		return &parquetWriter{baseDir: dir}, nil
	}
	return &csvWriter{baseDir: dir, create: createFile}, nil
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

type csvWriter struct {
	baseDir string
	create  func(path string) (io.WriteCloser, error)
}

func (w *csvWriter) Dir() string { return w.baseDir }

func (w *csvWriter) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "name", "kind", "depth", "simulations", "time_limit", "seed"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Name,
			config.Kind,
			strconv.Itoa(config.Depth),
			strconv.Itoa(config.Simulations),
			config.TimeLimit.String(),
			strconv.FormatUint(config.Seed, 10),
		})
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *csvWriter) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "start_time", "end_time", "duration", "total_moves"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			record.StartTime.Format(time.RFC3339Nano),
			record.EndTime.Format(time.RFC3339Nano),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *csvWriter) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "column", "searcher", "duration", "episodes", "nodes", "depth"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Column),
			record.Searcher,
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Depth),
		})
	}
	return w.write("move_records.csv", header, rows)
}

func (w *csvWriter) write(name string, header []string, rows [][]string) (err error) {
	path := filepath.Join(w.baseDir, name)
	f, err := w.create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", name, closeErr)
		}
	}()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

type AgentConfigRow struct {
	ID          int32  `parquet:"id"`
	Name        string `parquet:"name,dict"`
	Kind        string `parquet:"kind,dict"`
	Depth       int32  `parquet:"depth"`
	Simulations int32  `parquet:"simulations"`
	TimeLimitNs int64  `parquet:"time_limit_ns"`
	Seed        uint64 `parquet:"seed"`
}

type GameRow struct {
	ID             int32 `parquet:"id"`
	Agent1         int32 `parquet:"agent1"`
	Agent2         int32 `parquet:"agent2"`
	StartingPlayer int32 `parquet:"starting_player"`
	Winner         int32 `parquet:"winner"`
	StartNs        int64 `parquet:"start_ns"`
	EndNs          int64 `parquet:"end_ns"`
	DurationNs     int64 `parquet:"duration_ns"`
	TotalMoves     int32 `parquet:"total_moves"`
}

type MoveRow struct {
	Game       int32  `parquet:"game"`
	Step       int32  `parquet:"step"`
	Player     int32  `parquet:"player"`
	Column     int32  `parquet:"column"`
	Searcher   string `parquet:"searcher,dict"`
	DurationNs int64  `parquet:"duration_ns"`
	Episodes   int32  `parquet:"episodes"`
	Nodes      int32  `parquet:"nodes"`
	Depth      int32  `parquet:"depth"`
}

type parquetWriter struct {
	baseDir string
}

func (w *parquetWriter) Dir() string { return w.baseDir }

func (w *parquetWriter) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([]AgentConfigRow, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, AgentConfigRow{
			ID:          int32(config.ID),
			Name:        config.Name,
			Kind:        config.Kind,
			Depth:       int32(config.Depth),
			Simulations: int32(config.Simulations),
			TimeLimitNs: int64(config.TimeLimit),
			Seed:        config.Seed,
		})
	}
	return writeParquet(filepath.Join(w.baseDir, "agent_configs.parquet"), "agent_configs_v1", rows)
}

func (w *parquetWriter) WriteGameRecords(records []GameRecord) error {
	rows := make([]GameRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, GameRow{
			ID:             int32(record.ID),
			Agent1:         int32(record.Agent1),
			Agent2:         int32(record.Agent2),
			StartingPlayer: int32(record.StartingPlayer),
			Winner:         int32(record.Winner),
			StartNs:        record.StartTime.UnixNano(),
			EndNs:          record.EndTime.UnixNano(),
			DurationNs:     int64(record.Duration),
			TotalMoves:     int32(record.TotalMoves),
		})
	}
	return writeParquet(filepath.Join(w.baseDir, "game_records.parquet"), "game_records_v1", rows)
}

func (w *parquetWriter) WriteMoveRecords(records []MoveRecord) error {
	rows := make([]MoveRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, MoveRow{
			Game:       int32(record.Game),
			Step:       int32(record.Step),
			Player:     int32(record.Player),
			Column:     int32(record.Column),
			Searcher:   record.Searcher,
			DurationNs: int64(record.Duration),
			Episodes:   int32(record.Episodes),
			Nodes:      int32(record.Nodes),
			Depth:      int32(record.Depth),
		})
	}
	return writeParquet(filepath.Join(w.baseDir, "move_records.parquet"), "move_records_v1", rows)
}

// writeParquet writes rows to a temporary file and renames it into place.
func writeParquet[T any](path, schema string, rows []T) error {
	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}
