package games

import (
	"fmt"
	"math/rand"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
)

const cupsMultiplier = 3.0

type CupsParams struct {
	Pick int `json:"pick"` // cup index, 0..2
}

// PlayCups hides a ball under one of three cups. A correct pick pays 3×.
func PlayCups(bet int64, p CupsParams, rng *rand.Rand) (*Outcome, error) {
	if p.Pick < 0 || p.Pick > 2 {
		return nil, fmt.Errorf("%w: cup pick must be 0..2", models.ErrInvalidParams)
	}

	ball := rng.Intn(3)
	out := &Outcome{
		Result: ResultLose,
		Details: map[string]any{
			"pick": p.Pick,
			"ball": ball,
		},
	}
	if p.Pick == ball {
		out.Result = ResultWin
		out.Multiplier = cupsMultiplier
		out.WinAmount = payout(bet, cupsMultiplier)
	}
	return out, nil
}
