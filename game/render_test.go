package game

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	b := newStandardBoard(t)
	applyAll(t, b, P1, 3)
	applyAll(t, b, P2, 4)

	t.Run("plain profile matches String", func(t *testing.T) {
		out := termenv.NewOutput(&bytes.Buffer{}, termenv.WithProfile(termenv.Ascii))

		require.Equal(t, b.String(), b.Render(out))
	})

	t.Run("color profile adds escape sequences", func(t *testing.T) {
		out := termenv.NewOutput(&bytes.Buffer{}, termenv.WithProfile(termenv.ANSI))

		rendered := b.Render(out)
		require.True(t, strings.Contains(rendered, "\x1b["), "Pieces should be colored")
		require.Equal(t, strings.Count(b.String(), "\n"), strings.Count(rendered, "\n"))
	})
}
