// Package games holds the outcome engines for the ten mini-games. Every
// engine is a pure function over an injected rand source: it maps
// (bet, player parameters, randomness) to an Outcome and never touches
// balances itself. Settlement is the game service's job.
package games

import "math"

type Result string

const (
	ResultWin  Result = "win"
	ResultLose Result = "lose"
	ResultDraw Result = "draw"
)

// Outcome describes one resolved play.
type Outcome struct {
	WinAmount  int64   `json:"winAmount"` // cents, 0 on loss
	Multiplier float64 `json:"multiplier"`
	Result     Result  `json:"result"`
	// JackpotHit is set by the jackpot slots engine when the crown triple
	// lands; the pool owner decides the actual payout in that case.
	JackpotHit bool           `json:"jackpotHit,omitempty"`
	Details    map[string]any `json:"details"`
}

// payout converts bet × multiplier to cents, rounding half away from zero.
func payout(bet int64, mult float64) int64 {
	return int64(math.Round(float64(bet) * mult))
}
