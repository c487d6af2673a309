package communication

import (
	"fmt"

	"connect4/game"
	"connect4/gamemaster"
	"connect4/meta"
	"connect4/searcher/agent"
)

// GameConfig is the body of POST /games/start. Missing fields take the
// defaults: a 6x7 board, a human first player and a random second player.
type GameConfig struct {
	Rows            int        `json:"rows"`
	Cols            int        `json:"cols"`
	P1Agent         agent.Kind `json:"p1_agent"`
	P2Agent         agent.Kind `json:"p2_agent"`
	MinimaxDepth    int        `json:"minimax_depth"`
	MCTSSimulations int        `json:"mcts_simulations"`
}

type MoveRequest struct {
	Column int `json:"column"`
}

// GameState is the public view of a game. Board cells hold 0 (empty),
// 1 (player one) or -1 (player two).
type GameState struct {
	GameID        string  `json:"game_id"`
	Board         [][]int `json:"board"`
	CurrentPlayer int     `json:"current_player"` // 1 or -1
	Winner        *int    `json:"winner"`
	IsTerminal    bool    `json:"is_terminal"`
	LastMove      *int    `json:"last_move"`
	Message       string  `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Config converts the request to a game master config, filling in defaults.
func (c GameConfig) Config() gamemaster.Config {
	cfg := gamemaster.DefaultConfig()
	if c.Rows != 0 {
		cfg.Rows = c.Rows
	}
	if c.Cols != 0 {
		cfg.Cols = c.Cols
	}
	if c.P1Agent != "" {
		cfg.P1.Kind = c.P1Agent
	}
	if c.P2Agent != "" {
		cfg.P2.Kind = c.P2Agent
	}

	depth, simulations := c.MinimaxDepth, c.MCTSSimulations
	if depth == 0 {
		depth = meta.MINIMAX_DEPTH
	}
	if simulations == 0 {
		simulations = meta.MCTS_SIMULATIONS
	}
	for _, spec := range []*agent.Spec{&cfg.P1, &cfg.P2} {
		spec.Depth = depth
		spec.Simulations = simulations
	}
	return cfg
}

func NewGameState(s gamemaster.Snapshot) GameState {
	board := make([][]int, len(s.Cells))
	for r, row := range s.Cells {
		board[r] = make([]int, len(row))
		for c, p := range row {
			board[r][c] = int(p)
		}
	}

	state := GameState{
		GameID:        s.ID,
		Board:         board,
		CurrentPlayer: int(s.Turn),
		IsTerminal:    s.Terminal,
		Message:       s.Message,
	}
	if s.Winner != game.Empty {
		winner := int(s.Winner)
		state.Winner = &winner
	}
	if s.LastMove >= 0 {
		lastMove := s.LastMove
		state.LastMove = &lastMove
	}
	return state
}

// ToBoard rebuilds a board from the wire grid.
func (s GameState) ToBoard() (*game.Board, error) {
	cells := make([][]game.Player, len(s.Board))
	for r, row := range s.Board {
		cells[r] = make([]game.Player, len(row))
		for c, v := range row {
			if v < -1 || v > 1 {
				return nil, fmt.Errorf("%w: cell (%d, %d) holds %d", game.ErrInvalidBoard, r, c, v)
			}
			cells[r][c] = game.Player(v)
		}
	}
	return game.FromCells(cells)
}
