package games

import (
	"fmt"
	"math/rand"
)

type Suit string

const (
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
	Spades   Suit = "SPADES"
)

// Rank is 2..14 where 11=J, 12=Q, 13=K, 14=A.
type Rank int

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	names := map[Rank]string{Jack: "J", Queen: "Q", King: "K", Ace: "A"}
	if n, ok := names[c.Rank]; ok {
		return fmt.Sprintf("%s of %s", n, c.Suit)
	}
	return fmt.Sprintf("%d of %s", c.Rank, c.Suit)
}

type Deck struct {
	Cards []Card
}

// NewDeck returns an unshuffled standard 52-card deck.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for _, suit := range []Suit{Hearts, Diamonds, Clubs, Spades} {
		for rank := Rank(2); rank <= Ace; rank++ {
			cards = append(cards, Card{Suit: suit, Rank: rank})
		}
	}
	return &Deck{Cards: cards}
}

// NewShuffledDeck returns a fresh deck shuffled with the given source.
// Each hand draws from its own fresh deck; no shoe state persists
// across hands.
func NewShuffledDeck(rng *rand.Rand) *Deck {
	d := NewDeck()
	d.Shuffle(rng)
	return d
}

func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Draw removes and returns the top card.
func (d *Deck) Draw() Card {
	card := d.Cards[0]
	d.Cards = d.Cards[1:]
	return card
}
