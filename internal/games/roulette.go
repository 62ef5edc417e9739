package games

import (
	"fmt"
	"math/rand"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
)

// redNumbers is the standard European wheel coloring; the 18 remaining
// non-zero numbers are black, 0 is neither.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

type RouletteParams struct {
	Numbers []int  `json:"numbers,omitempty"` // straight-up picks, 0..36
	Color   string `json:"color,omitempty"`   // "red" | "black"
	Parity  string `json:"parity,omitempty"`  // "even" | "odd"
}

// PlayRoulette spins a uniform 0..36 wheel. Only the highest-priority
// matching bet class pays: number (×36) beats color (×2) beats parity (×2);
// classes never stack.
func PlayRoulette(bet int64, p RouletteParams, rng *rand.Rand) (*Outcome, error) {
	if len(p.Numbers) == 0 && p.Color == "" && p.Parity == "" {
		return nil, fmt.Errorf("%w: no roulette bet selected", models.ErrInvalidParams)
	}
	for _, n := range p.Numbers {
		if n < 0 || n > 36 {
			return nil, fmt.Errorf("%w: number %d out of range", models.ErrInvalidParams, n)
		}
	}
	switch p.Color {
	case "", "red", "black":
	default:
		return nil, fmt.Errorf("%w: unknown color %q", models.ErrInvalidParams, p.Color)
	}
	switch p.Parity {
	case "", "even", "odd":
	default:
		return nil, fmt.Errorf("%w: unknown parity %q", models.ErrInvalidParams, p.Parity)
	}

	winning := rng.Intn(37)

	var mult float64
	switch {
	case containsInt(p.Numbers, winning):
		mult = 36
	case winning != 0 && p.Color != "" && p.Color == colorOf(winning):
		mult = 2
	case winning != 0 && p.Parity != "" && p.Parity == parityOf(winning):
		mult = 2
	}

	out := &Outcome{
		Multiplier: mult,
		WinAmount:  payout(bet, mult),
		Result:     ResultLose,
		Details: map[string]any{
			"winningNumber": winning,
			"winningColor":  colorOf(winning),
		},
	}
	if mult > 0 {
		out.Result = ResultWin
	}
	return out, nil
}

func colorOf(n int) string {
	if n == 0 {
		return "green"
	}
	if redNumbers[n] {
		return "red"
	}
	return "black"
}

func parityOf(n int) string {
	if n%2 == 0 {
		return "even"
	}
	return "odd"
}

func containsInt(nums []int, n int) bool {
	for _, v := range nums {
		if v == n {
			return true
		}
	}
	return false
}
