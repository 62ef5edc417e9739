package games

import (
	"fmt"
	"math/rand"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
)

const plinkoRows = 8

// plinkoTables maps each of the nine landing buckets to a multiplier. The
// buckets follow a binomial(8, 0.5) distribution, so edge buckets are rare
// and carry the big multipliers. Each table is symmetric.
var plinkoTables = map[string][9]float64{
	"easy":   {5.6, 2.1, 1.1, 1.0, 0.5, 1.0, 1.1, 2.1, 5.6},
	"normal": {13, 3, 1.3, 0.7, 0.4, 0.7, 1.3, 3, 13},
	"hard":   {29, 4, 1.5, 0.3, 0.2, 0.3, 1.5, 4, 29},
}

type PlinkoParams struct {
	Difficulty string `json:"difficulty"` // "easy" | "normal" | "hard"
}

// PlayPlinko drops a ball through 8 rows of pegs. Each row deflects left or
// right with equal probability; the bucket index is the number of rights.
func PlayPlinko(bet int64, p PlinkoParams, rng *rand.Rand) (*Outcome, error) {
	table, ok := plinkoTables[p.Difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: unknown plinko difficulty %q", models.ErrInvalidParams, p.Difficulty)
	}

	path := make([]int, plinkoRows)
	bucket := 0
	for i := range path {
		step := rng.Intn(2)
		path[i] = step
		bucket += step
	}

	mult := table[bucket]
	result := ResultLose
	if mult >= 1 {
		result = ResultWin
	}
	return &Outcome{
		WinAmount:  payout(bet, mult),
		Multiplier: mult,
		Result:     result,
		Details: map[string]any{
			"bucket":     bucket,
			"path":       path,
			"difficulty": p.Difficulty,
		},
	}, nil
}
