package games

import (
	"math/rand"
	"sort"
)

// Poker hand categories, low to high.
const (
	HandHighCard = iota
	HandPair
	HandTwoPair
	HandThreeOfAKind
	HandStraight
	HandFlush
	HandFullHouse
	HandFourOfAKind
	HandStraightFlush
)

var handNames = []string{
	"high card", "pair", "two pair", "three of a kind", "straight",
	"flush", "full house", "four of a kind", "straight flush",
}

const (
	pokerWinMult = 2.0
	pokerTieMult = 1.0
)

// PlayPoker deals two hole cards each and five shared community cards from
// one shuffled deck, then compares the best five-card category either side
// can make from its seven cards. The higher category wins 2×; equal
// categories push.
func PlayPoker(bet int64, rng *rand.Rand) (*Outcome, error) {
	deck := NewShuffledDeck(rng)

	playerHole := []Card{deck.Draw(), deck.Draw()}
	houseHole := []Card{deck.Draw(), deck.Draw()}
	community := make([]Card, 5)
	for i := range community {
		community[i] = deck.Draw()
	}

	playerCat := BestCategory(append(playerHole[:2:2], community...))
	houseCat := BestCategory(append(houseHole[:2:2], community...))

	out := &Outcome{
		Result: ResultLose,
		Details: map[string]any{
			"playerHole": handStrings(playerHole),
			"houseHole":  handStrings(houseHole),
			"community":  handStrings(community),
			"playerRank": handNames[playerCat],
			"houseRank":  handNames[houseCat],
		},
	}
	switch {
	case playerCat > houseCat:
		out.Result = ResultWin
		out.Multiplier = pokerWinMult
	case playerCat == houseCat:
		out.Result = ResultDraw
		out.Multiplier = pokerTieMult
	}
	out.WinAmount = payout(bet, out.Multiplier)
	return out, nil
}

// BestCategory returns the highest category among all five-card hands that
// can be drawn from the given cards.
func BestCategory(cards []Card) int {
	best := HandHighCard
	hand := make([]Card, 5)
	var pick func(start, n int)
	pick = func(start, n int) {
		if n == 5 {
			if cat := HandCategory(hand); cat > best {
				best = cat
			}
			return
		}
		for i := start; i <= len(cards)-(5-n); i++ {
			hand[n] = cards[i]
			pick(i+1, n+1)
		}
	}
	pick(0, 0)
	return best
}

// HandCategory classifies a five-card hand into one of the nine categories.
// Kickers are ignored; ties on category push.
func HandCategory(hand []Card) int {
	ranks := make([]int, len(hand))
	suits := make(map[Suit]int)
	counts := make(map[int]int)
	for i, c := range hand {
		ranks[i] = int(c.Rank)
		suits[c.Suit]++
		counts[int(c.Rank)]++
	}
	sort.Ints(ranks)

	flush := len(suits) == 1
	straight := isStraight(ranks)

	var pairs, trips, quads int
	for _, n := range counts {
		switch n {
		case 2:
			pairs++
		case 3:
			trips++
		case 4:
			quads++
		}
	}

	switch {
	case straight && flush:
		return HandStraightFlush
	case quads == 1:
		return HandFourOfAKind
	case trips == 1 && pairs == 1:
		return HandFullHouse
	case flush:
		return HandFlush
	case straight:
		return HandStraight
	case trips == 1:
		return HandThreeOfAKind
	case pairs == 2:
		return HandTwoPair
	case pairs == 1:
		return HandPair
	default:
		return HandHighCard
	}
}

func isStraight(sorted []int) bool {
	// Wheel: A-2-3-4-5.
	if sorted[0] == 2 && sorted[1] == 3 && sorted[2] == 4 && sorted[3] == 5 && sorted[4] == int(Ace) {
		return true
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}
