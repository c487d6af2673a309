package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Board is a Connect Four grid with gravity. Row 0 is the top row and pieces
// settle in the lowest empty row of a column.
//
// A Board is mutated in place by Apply and Play and is not safe for concurrent
// use. Searchers work on copies and never touch the caller's board.
type Board struct {
	rows     int
	cols     int
	cells    []Player // Row-major, row 0 at the top
	heights  []int    // Pieces stacked in each column
	moves    int      // Pieces on the board
	winner   Player   // Empty unless a line of WinLength exists
	terminal bool
}

// NewBoard returns an empty board. P1 is to move.
func NewBoard(rows, cols int) (*Board, error) {
	if rows < 1 || cols < 1 || rows > MaxDimension || cols > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	return &Board{
		rows:    rows,
		cols:    cols,
		cells:   make([]Player, rows*cols),
		heights: make([]int, cols),
	}, nil
}

// FromCells rebuilds a board from a grid (row 0 at the top), as produced by
// Cells. Winner, terminal flag and turn are derived from the pieces.
func FromCells(cells [][]Player) (*Board, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}
	b, err := NewBoard(len(cells), len(cells[0]))
	if err != nil {
		return nil, err
	}

	for r, row := range cells {
		if len(row) != b.cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidBoard, r, len(row), b.cols)
		}
		for c, p := range row {
			if !p.valid() {
				return nil, fmt.Errorf("%w: cell (%d, %d) holds %d", ErrInvalidBoard, r, c, p)
			}
			b.cells[r*b.cols+c] = p
		}
	}

	for c := 0; c < b.cols; c++ {
		height := 0
		for r := b.rows - 1; r >= 0; r-- {
			if b.cells[r*b.cols+c] == Empty {
				break
			}
			height++
		}
		// Nothing may float above the first gap
		for r := b.rows - 1 - height; r >= 0; r-- {
			if b.cells[r*b.cols+c] != Empty {
				return nil, fmt.Errorf("%w: floating piece at (%d, %d)", ErrInvalidBoard, r, c)
			}
		}
		b.heights[c] = height
		b.moves += height
	}

	p1Wins, p2Wins := b.CheckWin(P1), b.CheckWin(P2)
	switch {
	case p1Wins && p2Wins:
		return nil, fmt.Errorf("%w: both players have a line", ErrInvalidBoard)
	case p1Wins:
		b.winner, b.terminal = P1, true
	case p2Wins:
		b.winner, b.terminal = P2, true
	default:
		b.terminal = b.moves == len(b.cells)
	}
	return b, nil
}

// Copy returns a deep copy of the board.
func (b *Board) Copy() *Board {
	cells := make([]Player, len(b.cells))
	copy(cells, b.cells)
	heights := make([]int, len(b.heights))
	copy(heights, b.heights)

	return &Board{
		rows:     b.rows,
		cols:     b.cols,
		cells:    cells,
		heights:  heights,
		moves:    b.moves,
		winner:   b.winner,
		terminal: b.terminal,
	}
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

// Moves is the number of pieces on the board.
func (b *Board) Moves() int { return b.moves }

// At returns the content of a cell. Row 0 is the top row.
func (b *Board) At(row, col int) Player {
	return b.cells[row*b.cols+col]
}

// Cells returns a copy of the grid, row 0 at the top.
func (b *Board) Cells() [][]Player {
	grid := make([][]Player, b.rows)
	for r := range grid {
		grid[r] = make([]Player, b.cols)
		copy(grid[r], b.cells[r*b.cols:(r+1)*b.cols])
	}
	return grid
}

// Turn returns the player to move, inferred from piece-count parity since
// players alternate from an empty board.
func (b *Board) Turn() Player {
	if b.moves%2 == 0 {
		return P1
	}
	return P2
}

// Winner returns the player owning a line of WinLength, or Empty when there
// is none (including a drawn terminal board).
func (b *Board) Winner() Player { return b.winner }

// IsTerminal reports whether the game has been won or the grid is full.
func (b *Board) IsTerminal() bool { return b.terminal }

// IsDraw reports a terminal board without a winner.
func (b *Board) IsDraw() bool { return b.terminal && b.winner == Empty }

// Playable reports whether col is on the board and its top cell is empty.
func (b *Board) Playable(col int) bool {
	return col >= 0 && col < b.cols && b.heights[col] < b.rows
}

// LegalMoves returns the playable columns in ascending order, or an empty
// slice when the board is terminal.
func (b *Board) LegalMoves() []int {
	return b.AppendLegalMoves(make([]int, 0, b.cols))
}

// AppendLegalMoves appends the legal columns to dst, letting hot loops reuse
// a buffer.
func (b *Board) AppendLegalMoves(dst []int) []int {
	if b.terminal {
		return dst
	}
	for c, h := range b.heights {
		if h < b.rows {
			dst = append(dst, c)
		}
	}
	return dst
}

// Apply drops a piece of player p into col. The board is left untouched when
// an error is returned.
func (b *Board) Apply(col int, p Player) error {
	if b.terminal {
		return fmt.Errorf("%w: column %d", ErrGameOver, col)
	}
	if p != P1 && p != P2 {
		return fmt.Errorf("%w: no such player %d", ErrInvalidMove, p)
	}
	if col < 0 || col >= b.cols {
		return fmt.Errorf("%w: column %d out of range [0, %d)", ErrInvalidMove, col, b.cols)
	}
	if b.heights[col] == b.rows {
		return fmt.Errorf("%w: column %d is full", ErrInvalidMove, col)
	}

	row := b.rows - 1 - b.heights[col]
	b.cells[row*b.cols+col] = p
	b.heights[col]++
	b.moves++

	// Only the new piece can complete a line
	if b.connects(row, col, p) {
		b.winner = p
		b.terminal = true
	} else if b.moves == len(b.cells) {
		b.terminal = true
	}
	return nil
}

// Play drops a piece for the player to move.
func (b *Board) Play(col int) error {
	return b.Apply(col, b.Turn())
}

// Next returns a copy of the board with col played by the player to move.
func (b *Board) Next(col int) (*Board, error) {
	next := b.Copy()
	if err := next.Play(col); err != nil {
		return nil, err
	}
	return next, nil
}

// CheckWin scans every horizontal, vertical and diagonal run of WinLength
// cells and reports whether one belongs entirely to p.
func (b *Board) CheckWin(p Player) bool {
	if p == Empty {
		return false
	}
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			if b.cells[r*b.cols+c] != p {
				continue
			}
			for _, d := range directions {
				if b.run(r, c, d[0], d[1], p) >= WinLength {
					return true
				}
			}
		}
	}
	return false
}

// Forward half of each line direction: horizontal, vertical, and both diagonals.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// run counts consecutive p cells starting at (r, c) and stepping by (dr, dc).
func (b *Board) run(r, c, dr, dc int, p Player) int {
	n := 0
	for r >= 0 && r < b.rows && c >= 0 && c < b.cols && b.cells[r*b.cols+c] == p {
		n++
		r += dr
		c += dc
	}
	return n
}

// connects reports whether the piece at (r, c) is part of a winning line.
func (b *Board) connects(r, c int, p Player) bool {
	for _, d := range directions {
		n := b.run(r, c, d[0], d[1], p) + b.run(r-d[0], c-d[1], -d[0], -d[1], p)
		if n >= WinLength {
			return true
		}
	}
	return false
}

// String renders the board as plain text with a column header.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString(" ")
	for c := 0; c < b.cols; c++ {
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(c % 10))
	}
	sb.WriteString("\n")
	for r := 0; r < b.rows; r++ {
		sb.WriteString("|")
		for c := 0; c < b.cols; c++ {
			sb.WriteString(" ")
			sb.WriteString(b.At(r, c).String())
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString(strings.Repeat("-", b.cols*2+3))
	sb.WriteString("\n")
	return sb.String()
}
