package domain

import (
	"math/rand"
)

// DeckSpec describes the composition of a deck and the deal.
type DeckSpec struct {
	CopiesPerValue int `yaml:"copies_per_value"`
	SplitCopies    int `yaml:"split_copies"`
	HandSize       int `yaml:"hand_size"`
}

// DefaultDeckSpec is six copies of each value, two split cards per adjacent
// value pair and eight-card hands.
var DefaultDeckSpec = DeckSpec{
	CopiesPerValue: 6,
	SplitCopies:    2,
	HandSize:       8,
}

// NewDeck returns the full card set in id order.
func NewDeck(spec DeckSpec) []Card {
	size := spec.CopiesPerValue*MaxCardValue + spec.SplitCopies*(MaxCardValue-MinCardValue)
	deck := make([]Card, 0, size)
	id := 1
	for v := MinCardValue; v <= MaxCardValue; v++ {
		for c := 0; c < spec.CopiesPerValue; c++ {
			deck = append(deck, NewStandardCard(id, v))
			id++
		}
	}
	for v := MinCardValue; v < MaxCardValue; v++ {
		for c := 0; c < spec.SplitCopies; c++ {
			deck = append(deck, NewSplitCard(id, v, v+1))
			id++
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given cards.
func ShuffleDeck(rng *rand.Rand, cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
