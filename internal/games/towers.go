package games

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
)

const (
	towersMaxLevels = 8
	towersHouseEdge = 0.96
)

// towersSafeProb is the chance of picking a safe tile on one level.
var towersSafeProb = map[string]float64{
	"easy":   0.75, // 4 tiles, 3 safe
	"normal": 0.5,  // 2 tiles, 1 safe
	"hard":   1.0 / 3.0,
}

type TowersParams struct {
	Difficulty string `json:"difficulty"` // "easy" | "normal" | "hard"
	Levels     int    `json:"levels"`     // climb target, 1..8
}

// TowersMultiplier returns the payout for clearing levels floors at the
// given per-level survival probability. Each floor multiplies the stake by
// houseEdge/p, so the expected return is houseEdge^levels regardless of
// difficulty.
func TowersMultiplier(difficulty string, levels int) float64 {
	step := towersHouseEdge / towersSafeProb[difficulty]
	return math.Pow(step, float64(levels))
}

// PlayTowers climbs a tower floor by floor. Every floor is an independent
// safe-tile roll; one bad tile ends the run with nothing.
func PlayTowers(bet int64, p TowersParams, rng *rand.Rand) (*Outcome, error) {
	prob, ok := towersSafeProb[p.Difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: unknown towers difficulty %q", models.ErrInvalidParams, p.Difficulty)
	}
	if p.Levels < 1 || p.Levels > towersMaxLevels {
		return nil, fmt.Errorf("%w: levels must be 1..%d", models.ErrInvalidParams, towersMaxLevels)
	}

	cleared := 0
	for i := 0; i < p.Levels; i++ {
		if rng.Float64() >= prob {
			break
		}
		cleared++
	}

	out := &Outcome{
		Result: ResultLose,
		Details: map[string]any{
			"difficulty": p.Difficulty,
			"target":     p.Levels,
			"cleared":    cleared,
		},
	}
	if cleared == p.Levels {
		mult := TowersMultiplier(p.Difficulty, p.Levels)
		out.Result = ResultWin
		out.Multiplier = mult
		out.WinAmount = payout(bet, mult)
	}
	return out, nil
}
