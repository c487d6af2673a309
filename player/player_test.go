package player

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"connect4/game"
	"connect4/searcher/agent"

	"github.com/stretchr/testify/require"
)

var _ agent.Agent = (*Human)(nil)

// cancellingReader cancels its context on the first read.
type cancellingReader struct {
	r      *strings.Reader
	cancel context.CancelFunc
}

func (c cancellingReader) Read(p []byte) (int, error) {
	c.cancel()
	return c.r.Read(p)
}

func TestHumanChoose(t *testing.T) {
	b, err := game.NewBoard(6, 7)
	require.NoError(t, err)

	t.Run("reading a legal column", func(t *testing.T) {
		var out bytes.Buffer
		h := NewHuman("alice", strings.NewReader("4\n"), &out)

		column, err := h.Choose(context.Background(), b, b.LegalMoves())

		require.NoError(t, err)
		require.Equal(t, 4, column)
		require.Contains(t, out.String(), "Player 1 (X), choose a column")
	})

	t.Run("prompting again after bad input", func(t *testing.T) {
		var out bytes.Buffer
		h := NewHuman("alice", strings.NewReader("x\n9\n  2 \n"), &out)

		column, err := h.Choose(context.Background(), b, []int{1, 2, 3})

		require.NoError(t, err)
		require.Equal(t, 2, column)
		require.Contains(t, out.String(), `"x" is not a column number`)
		require.Contains(t, out.String(), "Column 9 is not playable")
		require.Equal(t, 3, strings.Count(out.String(), "choose a column"))
	})

	t.Run("running out of input", func(t *testing.T) {
		h := NewHuman("alice", strings.NewReader("8\n"), &bytes.Buffer{})

		_, err := h.Choose(context.Background(), b, b.LegalMoves())

		require.ErrorIs(t, err, ErrNoInput)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		h := NewHuman("alice", strings.NewReader("1\n"), &bytes.Buffer{})

		_, err := h.Choose(ctx, b, b.LegalMoves())

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("cancelled while reading", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var out bytes.Buffer
		h := NewHuman("alice", cancellingReader{r: strings.NewReader("x\n3\n"), cancel: cancel}, &out)

		_, err := h.Choose(ctx, b, b.LegalMoves())

		require.ErrorIs(t, err, context.Canceled, "The line being read completes, the next prompt sees the cancellation")
		require.Equal(t, 1, strings.Count(out.String(), "choose a column"))
	})
}
