package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// drawnCells is a full 6x7 grid without any line of four.
var drawnCells = [][]Player{
	{P2, P1, P1, P2, P2, P2, P1},
	{P1, P2, P2, P1, P1, P1, P2},
	{P2, P2, P2, P1, P2, P1, P2},
	{P1, P1, P2, P1, P2, P2, P2},
	{P1, P2, P1, P2, P1, P1, P1},
	{P1, P1, P2, P2, P1, P2, P1},
}

func newStandardBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(6, 7)
	require.NoError(t, err)
	return b
}

func applyAll(t *testing.T, b *Board, p Player, cols ...int) {
	t.Helper()
	for _, c := range cols {
		require.NoError(t, b.Apply(c, p))
	}
}

// randomPosition plays random moves from an empty board and stops after at
// most plies moves or at the end of the game.
func randomPosition(t *testing.T, rng *rand.Rand, rows, cols, plies int) *Board {
	t.Helper()
	b, err := NewBoard(rows, cols)
	require.NoError(t, err)
	for i := 0; i < plies && !b.IsTerminal(); i++ {
		moves := b.LegalMoves()
		require.NoError(t, b.Play(moves[rng.Intn(len(moves))]))
	}
	return b
}

func mirror(cells [][]Player) [][]Player {
	mirrored := make([][]Player, len(cells))
	for r, row := range cells {
		mirrored[r] = make([]Player, len(row))
		for c, p := range row {
			mirrored[r][len(row)-1-c] = p
		}
	}
	return mirrored
}

func TestNewBoard(t *testing.T) {
	t.Run("creating an empty board", func(t *testing.T) {
		b := newStandardBoard(t)

		require.Equal(t, 6, b.Rows())
		require.Equal(t, 7, b.Cols())
		require.Equal(t, P1, b.Turn(), "P1 should move first")
		require.Equal(t, Empty, b.Winner())
		require.False(t, b.IsTerminal())
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, b.LegalMoves())
	})

	t.Run("rejecting invalid dimensions", func(t *testing.T) {
		for _, dims := range [][2]int{{0, 7}, {6, 0}, {-1, 7}, {MaxDimension + 1, 7}} {
			_, err := NewBoard(dims[0], dims[1])
			require.ErrorIs(t, err, ErrInvalidDimensions, "dims %v", dims)
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("stacking pieces with gravity", func(t *testing.T) {
		b := newStandardBoard(t)

		require.NoError(t, b.Play(3))
		require.NoError(t, b.Play(3))

		require.Equal(t, P1, b.At(5, 3), "First piece should land on the bottom row")
		require.Equal(t, P2, b.At(4, 3), "Second piece should land on top of the first")
		require.Equal(t, Empty, b.At(3, 3))
		require.Equal(t, 2, b.Moves())
		require.Equal(t, P1, b.Turn())
	})

	t.Run("rejecting a full column without modifying the board", func(t *testing.T) {
		b := newStandardBoard(t)
		for i := 0; i < 6; i++ {
			require.NoError(t, b.Play(0))
		}
		before := b.Cells()

		err := b.Play(0)

		require.ErrorIs(t, err, ErrInvalidMove)
		require.Equal(t, before, b.Cells(), "Board should be unchanged")
		require.Equal(t, 6, b.Moves())
		require.NotContains(t, b.LegalMoves(), 0)
	})

	t.Run("rejecting out of range columns", func(t *testing.T) {
		b := newStandardBoard(t)

		require.ErrorIs(t, b.Play(-1), ErrInvalidMove)
		require.ErrorIs(t, b.Play(7), ErrInvalidMove)
		require.Equal(t, 0, b.Moves())
	})

	t.Run("rejecting an empty player", func(t *testing.T) {
		b := newStandardBoard(t)

		require.ErrorIs(t, b.Apply(0, Empty), ErrInvalidMove)
	})

	t.Run("freezing the board once won", func(t *testing.T) {
		b := newStandardBoard(t)
		applyAll(t, b, P1, 0, 1, 2, 3)

		require.True(t, b.IsTerminal())
		require.Equal(t, P1, b.Winner())
		require.Empty(t, b.LegalMoves(), "Terminal board should have no legal moves")
		require.ErrorIs(t, b.Apply(4, P2), ErrGameOver)
	})
}

func TestCheckWin(t *testing.T) {
	t.Run("horizontal line", func(t *testing.T) {
		b := newStandardBoard(t)
		applyAll(t, b, P2, 3, 4, 5, 6)

		require.True(t, b.CheckWin(P2))
		require.False(t, b.CheckWin(P1))
		require.Equal(t, P2, b.Winner())
	})

	t.Run("vertical line", func(t *testing.T) {
		b := newStandardBoard(t)
		applyAll(t, b, P1, 6, 6, 6, 6)

		require.True(t, b.CheckWin(P1))
		require.Equal(t, P1, b.Winner())
	})

	t.Run("rising diagonal", func(t *testing.T) {
		b := newStandardBoard(t)
		applyAll(t, b, P2, 1, 2, 2, 3, 3, 3)
		applyAll(t, b, P1, 0, 1, 2, 3)

		require.True(t, b.CheckWin(P1))
		require.False(t, b.CheckWin(P2))
		require.True(t, b.IsTerminal())
	})

	t.Run("falling diagonal", func(t *testing.T) {
		b := newStandardBoard(t)
		applyAll(t, b, P1, 5, 4, 4, 3, 3, 3)
		applyAll(t, b, P2, 6, 5, 4, 3)

		require.True(t, b.CheckWin(P2))
		require.Equal(t, P2, b.Winner())
	})

	t.Run("three is not a win", func(t *testing.T) {
		b := newStandardBoard(t)
		applyAll(t, b, P1, 0, 1, 2)

		require.False(t, b.CheckWin(P1))
		require.False(t, b.IsTerminal())
	})

	t.Run("empty never wins", func(t *testing.T) {
		b := newStandardBoard(t)

		require.False(t, b.CheckWin(Empty))
	})

	t.Run("invariant under left-right reflection", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 300; i++ {
			b := randomPosition(t, rng, 4+rng.Intn(4), 4+rng.Intn(5), rng.Intn(60))
			mirrored, err := FromCells(mirror(b.Cells()))
			require.NoError(t, err)

			require.Equal(t, b.CheckWin(P1), mirrored.CheckWin(P1), "board:\n%s", b)
			require.Equal(t, b.CheckWin(P2), mirrored.CheckWin(P2), "board:\n%s", b)
			require.Equal(t, b.Winner(), mirrored.Winner())
			require.Equal(t, b.IsTerminal(), mirrored.IsTerminal())
		}
	})

	t.Run("incremental detection agrees with a full scan", func(t *testing.T) {
		rng := rand.New(rand.NewSource(11))
		for i := 0; i < 300; i++ {
			b := randomPosition(t, rng, 6, 7, 42)
			if b.Winner() != Empty {
				require.True(t, b.CheckWin(b.Winner()))
				require.False(t, b.CheckWin(b.Winner().Opponent()))
			} else {
				require.False(t, b.CheckWin(P1))
				require.False(t, b.CheckWin(P2))
			}
		}
	})
}

func TestLegalMoves(t *testing.T) {
	t.Run("membership changes only when a column fills", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		for game := 0; game < 50; game++ {
			b := newStandardBoard(t)
			for !b.IsTerminal() {
				before := b.LegalMoves()
				require.LessOrEqual(t, len(before), b.Cols())

				col := before[rng.Intn(len(before))]
				require.NoError(t, b.Play(col))
				if b.IsTerminal() {
					break
				}

				after := b.LegalMoves()
				full := b.At(0, col) != Empty
				if full {
					require.NotContains(t, after, col)
					require.Len(t, after, len(before)-1)
				} else {
					require.Equal(t, before, after)
				}
			}
		}
	})
}

func TestDraw(t *testing.T) {
	b, err := FromCells(drawnCells)
	require.NoError(t, err)

	require.True(t, b.IsTerminal(), "Full board should be terminal")
	require.True(t, b.IsDraw())
	require.Equal(t, Empty, b.Winner(), "Draw should have no winner")
	require.Empty(t, b.LegalMoves())
	require.Equal(t, 42, b.Moves())
}

func TestFromCells(t *testing.T) {
	t.Run("round trip through cells", func(t *testing.T) {
		b := newStandardBoard(t)
		for _, c := range []int{3, 3, 2, 4, 4} {
			require.NoError(t, b.Play(c))
		}

		rebuilt, err := FromCells(b.Cells())

		require.NoError(t, err)
		require.Equal(t, b.Cells(), rebuilt.Cells())
		require.Equal(t, b.Turn(), rebuilt.Turn())
		require.Equal(t, b.LegalMoves(), rebuilt.LegalMoves())
	})

	t.Run("rejecting floating pieces", func(t *testing.T) {
		cells := newStandardBoard(t).Cells()
		cells[2][1] = P1

		_, err := FromCells(cells)
		require.ErrorIs(t, err, ErrInvalidBoard)
	})

	t.Run("rejecting unknown cell values", func(t *testing.T) {
		cells := newStandardBoard(t).Cells()
		cells[5][0] = Player(2)

		_, err := FromCells(cells)
		require.ErrorIs(t, err, ErrInvalidBoard)
	})

	t.Run("rejecting ragged rows", func(t *testing.T) {
		cells := newStandardBoard(t).Cells()
		cells[3] = cells[3][:5]

		_, err := FromCells(cells)
		require.ErrorIs(t, err, ErrInvalidBoard)
	})

	t.Run("detecting an existing win", func(t *testing.T) {
		b := newStandardBoard(t)
		applyAll(t, b, P2, 0, 0, 0, 0)

		rebuilt, err := FromCells(b.Cells())

		require.NoError(t, err)
		require.Equal(t, P2, rebuilt.Winner())
		require.True(t, rebuilt.IsTerminal())
	})
}

func TestNext(t *testing.T) {
	b := newStandardBoard(t)

	next, err := b.Next(2)

	require.NoError(t, err)
	require.Equal(t, P1, next.At(5, 2))
	require.Equal(t, Empty, b.At(5, 2), "Original board should not change")
	require.Equal(t, 0, b.Moves())

	_, err = b.Next(9)
	require.ErrorIs(t, err, ErrInvalidMove)
}

func TestString(t *testing.T) {
	b, err := NewBoard(4, 4)
	require.NoError(t, err)
	require.NoError(t, b.Play(1))
	require.NoError(t, b.Play(1))

	expected := "  0 1 2 3\n" +
		"| . . . . |\n" +
		"| . . . . |\n" +
		"| . O . . |\n" +
		"| . X . . |\n" +
		"-----------\n"
	require.Equal(t, expected, b.String())
}
