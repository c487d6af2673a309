// meta/meta.go
package meta

import "time"

// ROWS and COLS define the default board size.
const ROWS = 6
const COLS = 7

// MINIMAX_DEPTH defines the default search depth for minimax agents.
const MINIMAX_DEPTH = 4

// MCTS_SIMULATIONS defines the default number of simulations for MCTS agents.
const MCTS_SIMULATIONS = 1000

// GO_ROUTINES defines the number of arena games played at once.
const GO_ROUTINES = 8

// ARENA_GAMES defines the number of games per arena matchup.
const ARENA_GAMES = 20

// AI_TIME_LIMIT bounds a single AI move on the game server.
const AI_TIME_LIMIT = 5 * time.Second

// MAX_MINIMAX_DEPTH and MAX_MCTS_SIMULATIONS cap the agents the game server
// accepts.
const MAX_MINIMAX_DEPTH = 12
const MAX_MCTS_SIMULATIONS = 200_000
