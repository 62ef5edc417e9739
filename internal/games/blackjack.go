package games

import "math/rand"

const (
	blackjackTarget   = 21
	blackjackStandAt  = 17
	blackjackWinMult  = 2.0
	blackjackBJMult   = 2.5
	blackjackPushMult = 1.0
)

// HandValue scores a blackjack hand. Aces count 11 and drop to 1 while the
// total busts.
func HandValue(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		switch {
		case c.Rank == Ace:
			total += 11
			aces++
		case c.Rank >= Jack:
			total += 10
		default:
			total += int(c.Rank)
		}
	}
	for total > blackjackTarget && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// PlayBlackjack deals a single auto-resolved hand from a fresh shuffled deck.
// Both the player and the dealer draw until reaching 17 or more. A natural
// two-card 21 pays 2.5×, a regular win 2×, a push returns the stake.
func PlayBlackjack(bet int64, rng *rand.Rand) (*Outcome, error) {
	deck := NewShuffledDeck(rng)

	player := []Card{deck.Draw(), deck.Draw()}
	dealer := []Card{deck.Draw(), deck.Draw()}

	natural := HandValue(player) == blackjackTarget

	for HandValue(player) < blackjackStandAt {
		player = append(player, deck.Draw())
	}
	playerTotal := HandValue(player)

	dealerTotal := HandValue(dealer)
	if playerTotal <= blackjackTarget {
		for dealerTotal < blackjackStandAt {
			dealer = append(dealer, deck.Draw())
			dealerTotal = HandValue(dealer)
		}
	}

	out := &Outcome{
		Result: ResultLose,
		Details: map[string]any{
			"playerHand":  handStrings(player),
			"dealerHand":  handStrings(dealer),
			"playerTotal": playerTotal,
			"dealerTotal": dealerTotal,
		},
	}

	switch {
	case playerTotal > blackjackTarget:
	case natural && dealerTotal != blackjackTarget:
		out.Result = ResultWin
		out.Multiplier = blackjackBJMult
	case dealerTotal > blackjackTarget || playerTotal > dealerTotal:
		out.Result = ResultWin
		out.Multiplier = blackjackWinMult
	case playerTotal == dealerTotal:
		out.Result = ResultDraw
		out.Multiplier = blackjackPushMult
	}
	out.WinAmount = payout(bet, out.Multiplier)
	return out, nil
}

func handStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
