package experiments

import (
	"context"
	"fmt"
	"sync"

	"connect4/engine"
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/meta"
	"connect4/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Matchup pairs two agents, P1 moves first.
type Matchup struct {
	P1 agent.Spec
	P2 agent.Spec
}

func (m Matchup) String() string {
	return fmt.Sprintf("%s vs %s", m.P1, m.P2)
}

// Result aggregates the games of one matchup.
type Result struct {
	Matchup
	P1Wins int
	P2Wins int
	Draws  int
}

func (r Result) Games() int { return r.P1Wins + r.P2Wins + r.Draws }

type Options struct {
	Games       int // Per matchup
	Concurrency int
	Rows, Cols  int
	// Seed derives per-game agent seeds. Zero keeps the seeds of the specs.
	Seed   uint64
	Writer metrics.Writer // Optional
}

func (o Options) withDefaults() Options {
	if o.Games < 1 {
		o.Games = meta.ARENA_GAMES
	}
	if o.Concurrency < 1 {
		o.Concurrency = meta.GO_ROUTINES
	}
	if o.Rows == 0 {
		o.Rows = meta.ROWS
	}
	if o.Cols == 0 {
		o.Cols = meta.COLS
	}
	return o
}

// BothOrders returns the matchups of a against b with each side starting once.
func BothOrders(a, b agent.Spec) []Matchup {
	return []Matchup{{P1: a, P2: b}, {P1: b, P2: a}}
}

// RoundRobin returns every ordered pair of distinct specs.
func RoundRobin(specs ...agent.Spec) []Matchup {
	matchUps := []Matchup{}
	for i, a := range specs {
		for j, b := range specs {
			if i != j {
				matchUps = append(matchUps, Matchup{P1: a, P2: b})
			}
		}
	}
	return matchUps
}

type job struct {
	game    int // Index into the records
	matchup int
}

// RunArena plays opts.Games games for every matchup, opts.Concurrency at a
// time, and writes the records when opts.Writer is set.
func RunArena(ctx context.Context, opts Options, matchUps []Matchup) ([]Result, error) {
	opts = opts.withDefaults()
	if _, err := game.NewBoard(opts.Rows, opts.Cols); err != nil {
		return nil, err
	}

	configs, ids := agentConfigs(matchUps)
	for _, m := range matchUps {
		for _, spec := range []agent.Spec{m.P1, m.P2} {
			if _, err := agent.New(spec); err != nil {
				return nil, fmt.Errorf("%s: %w", spec, err)
			}
		}
	}

	jobs := make([]job, 0, len(matchUps)*opts.Games)
	for mi := range matchUps {
		for i := 0; i < opts.Games; i++ {
			jobs = append(jobs, job{game: len(jobs), matchup: mi})
		}
	}

	log.Info().Msgf("starting arena: %d matchups, %d games each, %d at a time", len(matchUps), opts.Games, opts.Concurrency)

	gameRecords := make([]metrics.GameRecord, len(jobs))
	moveRecords := make([][]metrics.MoveRecord, len(jobs))
	results := make([]Result, len(matchUps))
	for mi, m := range matchUps {
		results[mi].Matchup = m
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			m := matchUps[j.matchup]
			winner, gameMetric, moveMetrics, err := runGame(gctx, opts, m, j.game)
			if err != nil {
				return fmt.Errorf("game %d (%s): %w", j.game+1, m, err)
			}

			gameRecords[j.game] = metrics.GameRecord{
				ID:         j.game + 1,
				Agent1:     ids[m.P1],
				Agent2:     ids[m.P2],
				GameMetric: gameMetric,
			}
			for _, mm := range moveMetrics {
				moveRecords[j.game] = append(moveRecords[j.game], metrics.MoveRecord{
					Game:       j.game + 1,
					MoveMetric: mm,
				})
			}

			mu.Lock()
			defer mu.Unlock()
			switch winner {
			case game.P1:
				results[j.matchup].P1Wins++
			case game.P2:
				results[j.matchup].P2Wins++
			default:
				results[j.matchup].Draws++
			}
			log.Info().Msgf("completed game %d of %d (%s) with winner: %s", j.game+1, len(jobs), m, winner)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range results {
		log.Info().Msgf("%s: %d-%d-%d (p1 wins, p2 wins, draws)", r.Matchup, r.P1Wins, r.P2Wins, r.Draws)
	}

	if opts.Writer != nil {
		var flat []metrics.MoveRecord
		for _, records := range moveRecords {
			flat = append(flat, records...)
		}
		if err := store(opts.Writer, configs, gameRecords, flat); err != nil {
			return results, err
		}
	}
	return results, nil
}

func runGame(ctx context.Context, opts Options, m Matchup, index int) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	p1, p2 := m.P1, m.P2
	if opts.Seed != 0 {
		p1.Seed = opts.Seed + uint64(2*index)
		p2.Seed = opts.Seed + uint64(2*index+1)
	}
	a1, err := agent.New(p1)
	if err != nil {
		return game.Empty, metrics.GameMetric{}, nil, err
	}
	a2, err := agent.New(p2)
	if err != nil {
		return game.Empty, metrics.GameMetric{}, nil, err
	}
	board, err := game.NewBoard(opts.Rows, opts.Cols)
	if err != nil {
		return game.Empty, metrics.GameMetric{}, nil, err
	}
	return engine.LocalEngine(board, a1, a2).Run(ctx)
}

// agentConfigs numbers the distinct specs of matchUps from 1 in order of
// appearance.
func agentConfigs(matchUps []Matchup) ([]metrics.AgentConfig, map[agent.Spec]int) {
	configs := []metrics.AgentConfig{}
	ids := map[agent.Spec]int{}
	for _, m := range matchUps {
		for _, spec := range []agent.Spec{m.P1, m.P2} {
			if _, ok := ids[spec]; ok {
				continue
			}
			ids[spec] = len(configs) + 1
			configs = append(configs, metrics.AgentConfig{
				ID:          ids[spec],
				Name:        spec.String(),
				Kind:        string(spec.Kind),
				Depth:       spec.Depth,
				Simulations: spec.Simulations,
				TimeLimit:   spec.TimeLimit,
				Seed:        spec.Seed,
			})
		}
	}
	return configs, ids
}

func store(writer metrics.Writer, configs []metrics.AgentConfig, games []metrics.GameRecord, moves []metrics.MoveRecord) error {
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored move records in %s", writer.Dir())
	return nil
}
