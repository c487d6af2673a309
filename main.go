package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connect4/communication"
	"connect4/communication/client"
	"connect4/communication/server"
	"connect4/config"
	"connect4/engine"
	"connect4/experiments"
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/gamemaster"
	"connect4/player"
	"connect4/searcher/agent"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
)

const usage = `usage: connect4 [flags] <command>

commands:
  demo        play a console game between the configured sides
  serve       run the HTTP game server
  arena       play the configured sides against each other, both orders
  throughput  measure the search speed of the configured second side
  remote      watch an AI game played on a running server

flags:
`

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file, environment only when empty")
	addr := flag.String("addr", "http://localhost:8000", "Server URL for the remote command")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad(*configPath)
	cfg.ConfigureLogging(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command := flag.Arg(0); command {
	case "demo":
		err = runDemo(ctx, cfg)
	case "serve":
		err = runServer(ctx, cfg)
	case "arena":
		err = runArena(ctx, cfg)
	case "throughput":
		err = runThroughput(ctx, cfg)
	case "remote":
		err = runRemote(ctx, cfg, *addr)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("connect4 failed")
	}
}

// sideAgent builds the agent of one configured side, reading moves from the
// console for a human.
func sideAgent(side config.Side, name string) (agent.Agent, error) {
	spec, err := side.Spec()
	if err != nil {
		return nil, err
	}
	a, err := agent.New(spec)
	if errors.Is(err, agent.ErrHumanControlled) {
		return player.NewHuman(name, os.Stdin, os.Stdout), nil
	}
	return a, err
}

func runDemo(ctx context.Context, cfg *config.Config) error {
	p1, err := sideAgent(cfg.Game.P1, "player 1")
	if err != nil {
		return err
	}
	p2, err := sideAgent(cfg.Game.P2, "player 2")
	if err != nil {
		return err
	}
	board, err := game.NewBoard(cfg.Game.Rows, cfg.Game.Cols)
	if err != nil {
		return err
	}

	out := termenv.NewOutput(os.Stdout)
	fmt.Println(board.Render(out))
	e := engine.LocalEngine(board, p1, p2, engine.WithObserver(func(b *game.Board, move metrics.MoveMetric) {
		fmt.Printf("Player %d (%s) plays column %d\n", move.Player, move.Searcher, move.Column)
		fmt.Println(b.Render(out))
	}))

	winner, _, _, err := e.Run(ctx)
	if err != nil {
		return err
	}
	if winner == game.Empty {
		fmt.Println("Draw")
	} else {
		fmt.Printf("Winner: Player %d\n", winner.Number())
	}
	return nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	err := server.NewServer(gamemaster.NewGameMaster(gamemaster.WithLimits(cfg.Game.Limits()))).Run(ctx, srv)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func runArena(ctx context.Context, cfg *config.Config) error {
	p1, err := cfg.Game.P1.Spec()
	if err != nil {
		return err
	}
	p2, err := cfg.Game.P2.Spec()
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.Arena.Output, "arena", time.Now().UTC().Format("20060102T150405Z"))
	writer, err := metrics.NewWriter(cfg.Arena.Format, dir)
	if err != nil {
		return err
	}

	results, err := experiments.RunArena(ctx, experiments.Options{
		Games:       cfg.Arena.Games,
		Concurrency: cfg.Arena.Concurrency,
		Rows:        cfg.Game.Rows,
		Cols:        cfg.Game.Cols,
		Seed:        cfg.Arena.Seed,
		Writer:      writer,
	}, experiments.BothOrders(p1, p2))
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-45s p1 %3d  p2 %3d  draws %3d\n", r.Matchup, r.P1Wins, r.P2Wins, r.Draws)
	}
	return nil
}

func runThroughput(ctx context.Context, cfg *config.Config) error {
	spec, err := cfg.Game.P2.Spec()
	if err != nil {
		return err
	}
	result, err := experiments.MeasureThroughput(ctx, spec, cfg.Arena.Games, 12, cfg.Arena.Seed)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d decisions in %s, %.0f nodes/s, %.0f episodes/s\n",
		spec, result.Decisions, result.Duration, result.NodesPerSecond(), result.EpisodesPerSecond())
	return nil
}

func runRemote(ctx context.Context, cfg *config.Config, addr string) error {
	p1, err := cfg.Game.P1.Spec()
	if err != nil {
		return err
	}
	p2, err := cfg.Game.P2.Spec()
	if err != nil {
		return err
	}
	if p1.Kind == agent.Human || p2.Kind == agent.Human {
		return fmt.Errorf("remote games need two AI sides, got %s and %s", p1, p2)
	}

	gameConfig := communication.GameConfig{
		Rows:    cfg.Game.Rows,
		Cols:    cfg.Game.Cols,
		P1Agent: p1.Kind,
		P2Agent: p2.Kind,
	}
	for _, spec := range []agent.Spec{p1, p2} {
		switch spec.Kind {
		case agent.Minimax:
			gameConfig.MinimaxDepth = spec.Depth
		case agent.MCTS:
			gameConfig.MCTSSimulations = spec.Simulations
		}
	}

	out := termenv.NewOutput(os.Stdout)
	c := client.NewClient(addr, nil)
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("server at %s: %w", addr, err)
	}
	e := engine.RemoteEngine(c, gameConfig, func(state communication.GameState) {
		b, err := state.ToBoard()
		if err != nil {
			log.Warn().Err(err).Msg("unreadable board")
			return
		}
		fmt.Println(b.Render(out))
		fmt.Println(state.Message)
	})
	_, _, _, err = e.Run(ctx)
	return err
}
