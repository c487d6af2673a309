package searcher

import "math"

// Hyperparameters for MCTS

// DefaultExploration is the UCB1 constant c. With c = sqrt(2) the bonus is
// sqrt(2) * sqrt(2 ln N / n).
const DefaultExploration = math.Sqrt2

// Rollout outcomes from one player's perspective (negate for the opponent)
const Win = 1.0
const Draw = 0.0
const Loss = -Win

type uct struct {
	numerator float64
}

// newUCT precomputes c^2 * 2 ln(N) for a parent visited N times.
func newUCT(c float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: c * c * 2 * math.Log(N)}
}

// evaluate returns UCB1 = q/n + c*sqrt(2 ln(N)/n). Unvisited children are
// always preferred.
func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		return math.Inf(1)
	}
	return q/n + math.Sqrt(u.numerator/n)
}
