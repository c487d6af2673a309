package game

import (
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// Piece colors in ANSI palette terms.
const (
	p1Color = "1" // Red
	p2Color = "3" // Yellow
)

// Render draws the board like String, coloring pieces for the terminal
// profile of out. An Ascii profile yields the plain rendering.
func (b *Board) Render(out *termenv.Output) string {
	var sb strings.Builder
	sb.WriteString(" ")
	for c := 0; c < b.cols; c++ {
		sb.WriteString(" ")
		sb.WriteString(out.String(strconv.Itoa(c % 10)).Faint().String())
	}
	sb.WriteString("\n")

	for r := 0; r < b.rows; r++ {
		sb.WriteString("|")
		for c := 0; c < b.cols; c++ {
			sb.WriteString(" ")
			sb.WriteString(b.renderCell(out, r, c))
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString(strings.Repeat("-", b.cols*2+3))
	sb.WriteString("\n")
	return sb.String()
}

func (b *Board) renderCell(out *termenv.Output, r, c int) string {
	p := b.At(r, c)
	switch p {
	case P1:
		return out.String(p.String()).Foreground(out.Color(p1Color)).Bold().String()
	case P2:
		return out.String(p.String()).Foreground(out.Color(p2Color)).Bold().String()
	default:
		return p.String()
	}
}
