package games

import "math/rand"

// Slot reel symbols. Each of the three reels lands uniformly on one of the
// eight symbols.
const (
	SymbolCherry     = "cherry"
	SymbolLemon      = "lemon"
	SymbolWatermelon = "watermelon"
	SymbolGrape      = "grape"
	SymbolBell       = "bell"
	SymbolSeven      = "seven"
	SymbolDiamond    = "diamond"
	SymbolCrown      = "crown"
)

var slotSymbols = []string{
	SymbolCherry, SymbolLemon, SymbolWatermelon, SymbolGrape,
	SymbolBell, SymbolSeven, SymbolDiamond, SymbolCrown,
}

// tripleMultipliers pays three of a kind. The crown triple is absent here
// on purpose: it hits the shared jackpot pool instead of a fixed multiple.
var tripleMultipliers = map[string]float64{
	SymbolDiamond:    50,
	SymbolSeven:      20,
	SymbolBell:       10,
	SymbolGrape:      5,
	SymbolWatermelon: 4,
	SymbolLemon:      3,
	SymbolCherry:     2,
}

const slotsPairMultiplier = 1.5

// PlaySlots spins three independent reels. Three matching symbols pay the
// triple table, exactly two matching pay 1.5×, and a crown triple raises
// JackpotHit with no fixed multiplier.
func PlaySlots(bet int64, rng *rand.Rand) (*Outcome, error) {
	reels := [3]string{
		slotSymbols[rng.Intn(len(slotSymbols))],
		slotSymbols[rng.Intn(len(slotSymbols))],
		slotSymbols[rng.Intn(len(slotSymbols))],
	}

	out := &Outcome{
		Result: ResultLose,
		Details: map[string]any{
			"reels": []string{reels[0], reels[1], reels[2]},
		},
	}

	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		if reels[0] == SymbolCrown {
			out.Result = ResultWin
			out.JackpotHit = true
			return out, nil
		}
		mult := tripleMultipliers[reels[0]]
		out.Result = ResultWin
		out.Multiplier = mult
		out.WinAmount = payout(bet, mult)
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		out.Result = ResultWin
		out.Multiplier = slotsPairMultiplier
		out.WinAmount = payout(bet, slotsPairMultiplier)
	}
	return out, nil
}
