package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringo/internal/domain"
)

// hand builds cards from values; a value of 45 means a 4/5 split card.
func hand(values ...int) []domain.Card {
	out := make([]domain.Card, len(values))
	for i, v := range values {
		if v > domain.MaxCardValue {
			out[i] = domain.NewSplitCard(i+1, v/10, v%10)
			continue
		}
		out[i] = domain.NewStandardCard(i+1, v)
	}
	return out
}

func TestShape_Groups(t *testing.T) {
	tests := []struct {
		name string
		hand []domain.Card
		want []Group
	}{
		{name: "Empty", hand: nil, want: nil},
		{name: "Singles", hand: hand(1, 2, 3), want: nil},
		{name: "Pair and triple", hand: hand(3, 3, 5, 6, 6, 6), want: []Group{{0, 1, 3}, {3, 5, 6}}},
		{name: "Split joins", hand: hand(4, 45, 4), want: []Group{{0, 2, 4}}},
		{name: "Greedy left first", hand: hand(3, 34, 4, 4), want: []Group{{0, 1, 3}, {2, 3, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Groups(tt.hand))
		})
	}
}

func TestShape_HandCost(t *testing.T) {
	tests := []struct {
		name string
		hand []domain.Card
		want int
	}{
		{name: "Empty", hand: nil, want: 0},
		{name: "Low singles", hand: hand(1, 2, 3), want: 0},
		// one group of 2
		{name: "Pair", hand: hand(2, 2), want: -4},
		// triple
		{name: "Triple", hand: hand(5, 5, 5), want: -9},
		// two 3s separated by two cards: gaps 2
		{name: "Blocked duplicates", hand: hand(3, 1, 2, 3), want: 6},
		// high singles at both ends
		{name: "High edges", hand: hand(8, 2, 7), want: 2},
		// grouped high card at the edge is fine
		{name: "Grouped high edge", hand: hand(8, 8, 2), want: -4},
		// the split card sits in the 3 group next to the 4 group it could join
		{name: "Flex split", hand: hand(3, 34, 4, 4), want: -4 - 4 - 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HandCost(tt.hand))
		})
	}
}

func TestShape_Fragmentation(t *testing.T) {
	assert.Equal(t, 0, Fragmentation(hand(3, 3, 4)))
	assert.Equal(t, 1, Fragmentation(hand(3, 4, 3)))
	assert.Equal(t, 3, Fragmentation(hand(3, 4, 3, 4, 3)))
	assert.Equal(t, 0, Fragmentation(hand(3, 3, 4)[1:]))
}

func TestShape_BestInsertion(t *testing.T) {
	h := hand(2, 5, 5, 7)
	card := domain.NewStandardCard(99, 5)

	pos, cost := BestInsertion(h, card)
	placed := domain.InsertCard(h, pos, card)
	assert.Equal(t, cost, HandCost(placed))
	assert.Contains(t, []int{1, 2, 3}, pos, "a third 5 belongs next to the pair")

	for p := 0; p <= len(h); p++ {
		assert.LessOrEqual(t, cost, HandCost(domain.InsertCard(h, p, card)))
	}
}

func TestShape_FindOptimalInsertion(t *testing.T) {
	h := hand(1, 4, 6)
	cards := []domain.Card{
		domain.NewStandardCard(50, 6),
		domain.NewStandardCard(51, 4),
		domain.NewStandardCard(52, 1),
	}

	p := FindOptimalInsertion(h, cards)
	require.Len(t, p.Hand, 6)
	assert.Equal(t, HandCost(p.Hand), p.Cost)
	assert.Equal(t, -12, p.Cost, "every card pairs with its twin")
	require.Len(t, p.Steps, 3)

	replayed := domain.CloneCards(h)
	for _, step := range p.Steps {
		idx := domain.IndexOfCard(cards, step.CardID)
		require.GreaterOrEqual(t, idx, 0)
		replayed = domain.InsertCard(replayed, step.Position, cards[idx])
	}
	assert.Equal(t, p.Hand, replayed, "steps replay to the same hand")
}

func TestShape_FindOptimalInsertionNeverWorseThanGreedy(t *testing.T) {
	h := hand(2, 7, 3, 3, 8)
	cards := []domain.Card{
		domain.NewStandardCard(60, 7),
		domain.NewSplitCard(61, 2, 3),
		domain.NewStandardCard(62, 8),
	}
	greedy := domain.CloneCards(h)
	for _, c := range cards {
		pos, _ := BestInsertion(greedy, c)
		greedy = domain.InsertCard(greedy, pos, c)
	}

	p := FindOptimalInsertion(h, cards)
	assert.LessOrEqual(t, p.Cost, HandCost(greedy))
}
