package games

import (
	"fmt"
	"math/rand"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
)

// caseTier is one reward bracket. Weights are permille and sum to 1000
// across the table.
type caseTier struct {
	Name      string
	Weight    int   // permille
	BaseValue int64 // cents, before the case multiplier
}

var caseTiers = []caseTier{
	{Name: "common", Weight: 500, BaseValue: 200},
	{Name: "uncommon", Weight: 250, BaseValue: 500},
	{Name: "rare", Weight: 150, BaseValue: 1000},
	{Name: "epic", Weight: 70, BaseValue: 2000},
	{Name: "legendary", Weight: 25, BaseValue: 5000},
	{Name: "mythic", Weight: 5, BaseValue: 20000},
}

// caseMultipliers scales both the cost and the rewards of a case type, so
// every tier keeps the same return ratio.
var caseMultipliers = map[string]int64{
	"bronze":  1,
	"silver":  2,
	"gold":    3,
	"diamond": 5,
}

const bronzeCaseCost int64 = 1000 // cents

type CasesParams struct {
	CaseType string `json:"caseType"` // "bronze" | "silver" | "gold" | "diamond"
}

// CaseCost returns the fixed price of a case type in cents, or an error for
// an unknown type. Cases ignore the posted bet; the price is the bet.
func CaseCost(caseType string) (int64, error) {
	mult, ok := caseMultipliers[caseType]
	if !ok {
		return 0, fmt.Errorf("%w: unknown case type %q", models.ErrInvalidParams, caseType)
	}
	return bronzeCaseCost * mult, nil
}

// PlayCases opens one case. A weighted tier roll decides the reward, which is
// always paid out; Result reports whether the reward covered the price.
func PlayCases(p CasesParams, rng *rand.Rand) (*Outcome, error) {
	mult, ok := caseMultipliers[p.CaseType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown case type %q", models.ErrInvalidParams, p.CaseType)
	}
	cost := bronzeCaseCost * mult

	roll := rng.Intn(1000)
	var tier caseTier
	for _, t := range caseTiers {
		if roll < t.Weight {
			tier = t
			break
		}
		roll -= t.Weight
	}

	reward := tier.BaseValue * mult
	result := ResultLose
	if reward >= cost {
		result = ResultWin
	}
	return &Outcome{
		WinAmount:  reward,
		Multiplier: float64(reward) / float64(cost),
		Result:     result,
		Details: map[string]any{
			"caseType": p.CaseType,
			"tier":     tier.Name,
			"cost":     cost,
		},
	}, nil
}
