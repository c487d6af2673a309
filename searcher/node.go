package searcher

import (
	"math"

	"connect4/game"
)

// node is a position in the MCTS tree. It owns its board and children; the
// parent link is only followed during backup.
//
// value is a running sum of outcomes seen from the perspective of the player
// who moved into this node, i.e. the player to move at the parent.
type node struct {
	parent   *node
	move     int // Column played from the parent, -1 at the root
	board    *game.Board
	children []*node
	untried  []int // Legal columns not yet expanded, popped from the end
	visits   int
	value    float64
}

func newNode(parent *node, move int, board *game.Board) *node {
	return &node{
		parent:  parent,
		move:    move,
		board:   board,
		untried: board.LegalMoves(),
	}
}

func (n *node) isTerminal() bool {
	return n.board.IsTerminal()
}

func (n *node) isExpandable() bool {
	return len(n.untried) > 0
}

// mover is the player whose move produced this node.
func (n *node) mover() game.Player {
	return n.board.Turn().Opponent()
}

// expand pops the last untried column and adds the resulting child.
func (n *node) expand() *node {
	last := len(n.untried) - 1
	move := n.untried[last]
	n.untried = n.untried[:last]

	board := n.board.Copy()
	if err := board.Play(move); err != nil {
		panic(err) // untried only holds legal columns
	}
	child := newNode(n, move, board)
	n.children = append(n.children, child)
	return child
}

// selectChild returns the fully expanded node's child with the highest UCB1.
// The first child wins ties.
func (n *node) selectChild(c float64) *node {
	if n.visits == 0 {
		panic("node has children but no visits")
	}
	policy := newUCT(c, float64(n.visits))

	var best *node
	maxScore := math.Inf(-1)
	for _, child := range n.children {
		score := policy.evaluate(child.value, float64(child.visits))
		if score == math.Inf(1) {
			return child
		}
		if score > maxScore {
			maxScore = score
			best = child
		}
	}
	return best
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.value / float64(n.visits)
}

// findBestChild returns the most visited child, breaking ties by mean value
// and then by expansion order.
func (n *node) findBestChild() *node {
	if len(n.children) == 0 {
		panic("node has no children")
	}

	best := n.children[0]
	for _, child := range n.children[1:] {
		if child.visits > best.visits || (child.visits == best.visits && child.mean() > best.mean()) {
			best = child
		}
	}
	return best
}

// size counts the nodes of the subtree rooted at n.
func (n *node) size() int {
	total := 1
	for _, child := range n.children {
		total += child.size()
	}
	return total
}
