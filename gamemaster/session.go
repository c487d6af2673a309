package gamemaster

import (
	"fmt"
	"sync"

	"connect4/game"
	"connect4/searcher/agent"
)

// Snapshot is a copy of a game's public state.
type Snapshot struct {
	ID       string
	Cells    [][]game.Player
	Turn     game.Player
	Winner   game.Player // Empty when nobody has won
	Terminal bool
	LastMove int // -1 before the first move
	Moves    int
	Message  string
}

// session is one game. Its lock serializes moves on the game, so independent
// games never wait on each other.
type session struct {
	mu       sync.Mutex
	id       string
	board    *game.Board
	agents   map[game.Player]agent.Agent // Human sides have no entry
	lastMove int
}

func (s *session) play(col int) error {
	if s.board.IsTerminal() {
		return ErrGameFinished
	}
	if err := s.board.Play(col); err != nil {
		return err
	}
	s.lastMove = col
	return nil
}

func (s *session) snapshot() Snapshot {
	return Snapshot{
		ID:       s.id,
		Cells:    s.board.Cells(),
		Turn:     s.board.Turn(),
		Winner:   s.board.Winner(),
		Terminal: s.board.IsTerminal(),
		LastMove: s.lastMove,
		Moves:    s.board.Moves(),
		Message:  message(s.board),
	}
}

func message(b *game.Board) string {
	switch {
	case !b.IsTerminal():
		return "Game in progress"
	case b.Winner() != game.Empty:
		return fmt.Sprintf("Winner: Player %d", b.Winner().Number())
	default:
		return "Draw"
	}
}
