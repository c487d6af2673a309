package game

// Heuristic weights. They set the playing strength of the minimax searcher,
// changing them changes which moves it picks.
const (
	CenterWeight         = 3   // Per own piece in the center column
	FourWeight           = 100 // Own window of four
	ThreeWeight          = 5   // Own three with one empty
	TwoWeight            = 2   // Own two with two empty
	OpponentThreePenalty = 4   // Opponent three with one empty
)

// Evaluate scores a non-terminal board from the perspective of player.
// Larger is better for player.
type Evaluate func(b *Board, player Player) int

// ScorePosition is the default static evaluation: a center-column bonus plus
// the sum of every window of WinLength cells scored by its piece counts.
func ScorePosition(b *Board, player Player) int {
	opponent := player.Opponent()
	score := 0

	center := b.cols / 2
	for r := 0; r < b.rows; r++ {
		if b.cells[r*b.cols+center] == player {
			score += CenterWeight
		}
	}

	for _, d := range directions {
		dr, dc := d[0], d[1]
		for r := 0; r < b.rows; r++ {
			endR := r + dr*(WinLength-1)
			if endR < 0 || endR >= b.rows {
				continue
			}
			for c := 0; c < b.cols; c++ {
				endC := c + dc*(WinLength-1)
				if endC < 0 || endC >= b.cols {
					continue
				}
				own, opp, empty := 0, 0, 0
				for i := 0; i < WinLength; i++ {
					switch b.cells[(r+i*dr)*b.cols+c+i*dc] {
					case player:
						own++
					case opponent:
						opp++
					default:
						empty++
					}
				}
				score += evaluateWindow(own, opp, empty)
			}
		}
	}

	return score
}

func evaluateWindow(own, opp, empty int) int {
	score := 0
	switch {
	case own == 4:
		score += FourWeight
	case own == 3 && empty == 1:
		score += ThreeWeight
	case own == 2 && empty == 2:
		score += TwoWeight
	}

	if opp == 3 && empty == 1 {
		score -= OpponentThreePenalty
	}
	return score
}
