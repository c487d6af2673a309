package game

import "errors"

// Player is the content of a cell and the identity of a side.
// The zero value is an empty cell.
type Player int8

const (
	Empty Player = 0
	P1    Player = 1  // Moves first
	P2    Player = -1 // Moves second
)

// WinLength is the number of aligned pieces that wins the game.
const WinLength = 4

// MaxDimension bounds rows and columns so a board always fits comfortably in memory.
const MaxDimension = 64

var (
	ErrInvalidMove       = errors.New("invalid move")
	ErrGameOver          = errors.New("game is over")
	ErrInvalidDimensions = errors.New("invalid board dimensions")
	ErrInvalidBoard      = errors.New("invalid board")
)

// Opponent returns the other side. Empty has no opponent.
func (p Player) Opponent() Player {
	return -p
}

func (p Player) String() string {
	switch p {
	case P1:
		return "X"
	case P2:
		return "O"
	default:
		return "."
	}
}

// Number is the 1-based player number used in messages, 0 for Empty.
func (p Player) Number() int {
	switch p {
	case P1:
		return 1
	case P2:
		return 2
	default:
		return 0
	}
}

func (p Player) valid() bool {
	return p == Empty || p == P1 || p == P2
}
