package games

import (
	"fmt"
	"math/rand"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
)

const (
	minesGridSize  = 25
	minesHouseEdge = 0.97
)

type MinesParams struct {
	MineCount int   `json:"mineCount"` // 1..24
	Picks     []int `json:"picks"`     // distinct cell indexes, 0..24
}

// MinesMultiplier returns the payout multiplier for surviving picks reveals
// on a 25-cell grid holding mines mines. It is the inverse survival
// probability scaled by the house factor, so every (mines, picks) pair has
// the same expected return.
func MinesMultiplier(mines, picks int) float64 {
	prob := 1.0
	for i := 0; i < picks; i++ {
		safe := minesGridSize - mines - i
		remaining := minesGridSize - i
		prob *= float64(safe) / float64(remaining)
	}
	return minesHouseEdge / prob
}

// PlayMines places MineCount mines uniformly on a 5x5 grid, then reveals the
// player's picks in order. Hitting a mine loses the bet; surviving all picks
// pays the inverse-probability multiplier.
func PlayMines(bet int64, p MinesParams, rng *rand.Rand) (*Outcome, error) {
	if p.MineCount < 1 || p.MineCount > minesGridSize-1 {
		return nil, fmt.Errorf("%w: mine count must be 1..24", models.ErrInvalidParams)
	}
	if len(p.Picks) < 1 || len(p.Picks) > minesGridSize-p.MineCount {
		return nil, fmt.Errorf("%w: need 1..%d picks", models.ErrInvalidParams, minesGridSize-p.MineCount)
	}
	seen := make(map[int]bool, len(p.Picks))
	for _, c := range p.Picks {
		if c < 0 || c >= minesGridSize {
			return nil, fmt.Errorf("%w: cell %d out of range", models.ErrInvalidParams, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: duplicate cell %d", models.ErrInvalidParams, c)
		}
		seen[c] = true
	}

	cells := rng.Perm(minesGridSize)
	mined := make(map[int]bool, p.MineCount)
	for _, c := range cells[:p.MineCount] {
		mined[c] = true
	}

	revealed := make([]int, 0, len(p.Picks))
	for _, c := range p.Picks {
		revealed = append(revealed, c)
		if mined[c] {
			return &Outcome{
				Result: ResultLose,
				Details: map[string]any{
					"hitMine":  c,
					"revealed": revealed,
					"mines":    cells[:p.MineCount],
				},
			}, nil
		}
	}

	mult := MinesMultiplier(p.MineCount, len(p.Picks))
	return &Outcome{
		WinAmount:  payout(bet, mult),
		Multiplier: mult,
		Result:     ResultWin,
		Details: map[string]any{
			"revealed": revealed,
			"mines":    cells[:p.MineCount],
		},
	}, nil
}
