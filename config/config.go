package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"connect4/gamemaster"
	"connect4/searcher/agent"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel  string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log-format" env:"LOG_FORMAT" env-default:"console"`
	HTTP      HTTP   `yaml:"http" env-prefix:"HTTP_"`
	Game      Game   `yaml:"game" env-prefix:"GAME_"`
	Arena     Arena  `yaml:"arena" env-prefix:"ARENA_"`
}

type HTTP struct {
	Host         string        `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"PORT" env-default:"8000"`
	ReadTimeout  time.Duration `yaml:"read-timeout" env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout  time.Duration `yaml:"idle-timeout" env:"IDLE_TIMEOUT" env-default:"60s"`
}

type Game struct {
	Rows int  `yaml:"rows" env:"ROWS" env-default:"6"`
	Cols int  `yaml:"cols" env:"COLS" env-default:"7"`
	P1   Side `yaml:"p1" env-prefix:"P1_"`
	P2   Side `yaml:"p2" env-prefix:"P2_"`

	// Limits of the agents served games may ask for
	AITimeLimit    time.Duration `yaml:"ai-time-limit" env:"AI_TIME_LIMIT" env-default:"5s"`
	MaxDepth       int           `yaml:"max-depth" env:"MAX_DEPTH" env-default:"12"`
	MaxSimulations int           `yaml:"max-simulations" env:"MAX_SIMULATIONS" env-default:"200000"`
}

func (g *Game) Limits() gamemaster.Limits {
	return gamemaster.Limits{
		MoveTimeLimit:  g.AITimeLimit,
		MaxDepth:       g.MaxDepth,
		MaxSimulations: g.MaxSimulations,
	}
}

// Side selects the agent of one player. An empty kind means human for the
// first player and random for the second.
type Side struct {
	Kind        string        `yaml:"kind" env:"KIND"`
	Depth       int           `yaml:"depth" env:"DEPTH" env-default:"4"`
	Simulations int           `yaml:"simulations" env:"SIMULATIONS" env-default:"1000"`
	TimeLimit   time.Duration `yaml:"time-limit" env:"TIME_LIMIT"`
	Seed        uint64        `yaml:"seed" env:"SEED"`
}

type Arena struct {
	Games       int    `yaml:"games" env:"GAMES" env-default:"20"`
	Concurrency int    `yaml:"concurrency" env:"CONCURRENCY" env-default:"8"`
	Output      string `yaml:"output" env:"OUTPUT" env-default:"results"`
	Format      string `yaml:"format" env:"FORMAT" env-default:"csv"`
	Seed        uint64 `yaml:"seed" env:"SEED"`
}

// Load reads the YAML file at path, then environment overrides. An empty
// path reads the environment only.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if config.Game.P1.Kind == "" {
		config.Game.P1.Kind = string(agent.Human)
	}
	if config.Game.P2.Kind == "" {
		config.Game.P2.Kind = string(agent.Random)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

func (c *Config) validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log-level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log-format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Arena.Format != "csv" && c.Arena.Format != "parquet" {
		return fmt.Errorf("%w: arena format %q", ErrInvalidConfig, c.Arena.Format)
	}
	if c.Game.AITimeLimit <= 0 || c.Game.MaxDepth < 1 || c.Game.MaxSimulations < 1 {
		return fmt.Errorf("%w: ai limits must be positive", ErrInvalidConfig)
	}
	if c.Arena.Games < 1 || c.Arena.Concurrency < 1 {
		return fmt.Errorf("%w: arena needs at least one game and one worker", ErrInvalidConfig)
	}
	for name, side := range map[string]Side{"p1": c.Game.P1, "p2": c.Game.P2} {
		if _, err := side.Spec(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

func (h *HTTP) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

func (s Side) Spec() (agent.Spec, error) {
	kind, err := agent.ParseKind(s.Kind)
	if err != nil {
		return agent.Spec{}, err
	}
	return agent.Spec{
		Kind:        kind,
		Depth:       s.Depth,
		Simulations: s.Simulations,
		TimeLimit:   s.TimeLimit,
		Seed:        s.Seed,
	}, nil
}

// ConfigureLogging sets the global zerolog level and writes logs to w, as
// colored console lines or as JSON.
func (c *Config) ConfigureLogging(w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.LogFormat == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly})
}
