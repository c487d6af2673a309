package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"connect4/game"
	"connect4/utils"
)

// ErrNoInput is returned when the input ends before a legal column is read.
var ErrNoInput = errors.New("no more input")

// Human reads columns typed on a console. It is only meant for the local
// demo, served games take human moves over HTTP.
type Human struct {
	name    string
	scanner *bufio.Scanner
	out     io.Writer
}

func NewHuman(name string, in io.Reader, out io.Writer) *Human {
	return &Human{
		name:    name,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

func (h *Human) Name() string { return h.name }

// Choose prompts until a legal column is typed. ctx is only checked between
// prompts: a pending read is not interrupted, so a cancelled demo still waits
// for one more line (or the end of the input).
func (h *Human) Choose(ctx context.Context, b *game.Board, legal []int) (int, error) {
	if len(legal) == 0 {
		return 0, fmt.Errorf("%s: no legal moves", h.name)
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprintf(h.out, "Player %d (%s), choose a column %v: ", b.Turn().Number(), b.Turn(), legal)

		if !h.scanner.Scan() {
			if err := h.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, ErrNoInput
		}

		line := strings.TrimSpace(h.scanner.Text())
		column, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(h.out, "%q is not a column number\n", line)
			continue
		}
		if !utils.Contains(legal, column) {
			fmt.Fprintf(h.out, "Column %d is not playable\n", column)
			continue
		}
		return column, nil
	}
}
