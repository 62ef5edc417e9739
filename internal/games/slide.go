package games

import (
	"fmt"
	"math/rand"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
)

type SlideParams struct {
	Target    int    `json:"target"`    // threshold, 0..100
	Direction string `json:"direction"` // "higher" | "lower"
}

// PlaySlide rolls a uniform 0..100 value. The player wins when the roll lands
// strictly beyond the target in the chosen direction. Multiplier is
// (100-T)/50 for "higher" and T/50 for "lower", boosted to 20× at the extreme
// thresholds (T≥95 higher, T≤5 lower). Targets are restricted to the
// house-side half of the range so no threshold yields a player-positive bet.
func PlaySlide(bet int64, p SlideParams, rng *rand.Rand) (*Outcome, error) {
	var mult float64
	switch p.Direction {
	case "higher":
		if p.Target < 50 || p.Target > 99 {
			return nil, fmt.Errorf("%w: target for higher must be 50..99", models.ErrInvalidParams)
		}
		mult = float64(100-p.Target) / 50
		if p.Target >= 95 {
			mult = 20
		}
	case "lower":
		if p.Target < 1 || p.Target > 50 {
			return nil, fmt.Errorf("%w: target for lower must be 1..50", models.ErrInvalidParams)
		}
		mult = float64(p.Target) / 50
		if p.Target <= 5 {
			mult = 20
		}
	default:
		return nil, fmt.Errorf("%w: direction must be higher or lower", models.ErrInvalidParams)
	}

	value := rng.Intn(101)
	won := (p.Direction == "higher" && value > p.Target) ||
		(p.Direction == "lower" && value < p.Target)

	out := &Outcome{
		Result: ResultLose,
		Details: map[string]any{
			"value":     value,
			"target":    p.Target,
			"direction": p.Direction,
		},
	}
	if won {
		out.Result = ResultWin
		out.Multiplier = mult
		out.WinAmount = payout(bet, mult)
	}
	return out, nil
}
