package brain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringo/internal/domain"
)

// dealtState deals a default deck to n players and puts a few cards on the
// table and the discard pile.
func dealtState(rng *rand.Rand, n int) *domain.GameState {
	deck := domain.NewDeck(domain.DefaultDeckSpec)
	cards := domain.ShuffleDeck(rng, deck)
	s := &domain.GameState{ID: "g", Status: domain.StatusPlaying, Deck: deck, Phase: domain.PhaseWaitingForPlayOrDraw}
	for i := 0; i < n; i++ {
		s.Players = append(s.Players, domain.Player{ID: string(rune('a' + i)), Hand: cards[:8]})
		cards = cards[8:]
	}
	s.Table = &domain.TableCombo{
		Combo: domain.Combo{Positions: []int{0}, Cards: []domain.Card{cards[0].Resolve(cards[0].MaxValue())}, Value: cards[0].MaxValue(), Size: 1},
		Owner: "b",
	}
	s.DiscardPile = domain.CloneCards(cards[1:6])
	s.DrawPile = domain.CloneCards(cards[6:])
	return s
}

func handIDs(hand []domain.Card) map[int]bool {
	out := make(map[int]bool, len(hand))
	for _, c := range hand {
		out[c.ID] = true
	}
	return out
}

func TestSampleWorldConservesCards(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		state := dealtState(rng, 2+int(seed%4))
		tr := NewTracker(8)
		tr.ObserveDraw("b", 1, 3, 8)

		world, err := SampleWorld(rng, state, "a", tr, nil)
		require.NoError(t, err, "seed %d", seed)
		require.NoError(t, domain.CheckConservation(world))

		assert.Equal(t, state.Players[0].Hand, world.Players[0].Hand, "own hand kept")
		assert.Equal(t, state.DiscardPile, world.DiscardPile)
		for i := range state.Players {
			assert.Len(t, world.Players[i].Hand, len(state.Players[i].Hand))
		}
	}
}

func TestSampleWorldDoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	state := dealtState(rng, 3)
	before := state.Clone()

	_, err := SampleWorld(rng, state, "a", NewTracker(8), nil)
	require.NoError(t, err)
	assert.Equal(t, before, state)
}

func TestSampleWorldKeepsVisibleHands(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	state := dealtState(rng, 3)

	world, err := SampleWorld(rng, state, "a", nil, map[string]bool{"c": true})
	require.NoError(t, err)
	assert.Equal(t, state.Players[2].Hand, world.Players[2].Hand)
}

func TestSampleWorldPlacesKnownCaptures(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	state := dealtState(rng, 2)
	captured := state.Players[1].Hand[:2]

	tr := NewTracker(8)
	for _, c := range captured {
		tr.ObserveCaptureInsert("b", c, 8)
	}

	for i := 0; i < 10; i++ {
		world, err := SampleWorld(rng, state, "a", tr, nil)
		require.NoError(t, err)
		ids := handIDs(world.Players[1].Hand)
		for _, c := range captured {
			assert.True(t, ids[c.ID], "captured card %d should stay with its taker", c.ID)
		}
	}
}

func TestSampleWorldHidesForeignDrawnCard(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	state := dealtState(rng, 2)
	top := len(state.DrawPile) - 1
	state.InFlight = &domain.InFlightCard{Owner: "b", Card: state.DrawPile[top]}
	state.DrawPile = state.DrawPile[:top]

	world, err := SampleWorld(rng, state, "a", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, world.InFlight)
	require.NoError(t, domain.CheckConservation(world))

	own := state.Clone()
	own.InFlight.Owner = "a"
	world, err = SampleWorld(rng, own, "a", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, world.InFlight)
	assert.Equal(t, own.InFlight.Card, world.InFlight.Card)
}

func TestSampleWorldSameSeedSameWorld(t *testing.T) {
	state := dealtState(rand.New(rand.NewSource(17)), 3)
	tr := NewTracker(8)
	for _, c := range state.Players[1].Hand[:4] {
		tr.ObserveCaptureInsert("b", c, 8)
	}
	tr.ObservePlay("c", comboOf(2, 90, 91), 0, 8)

	for seed := int64(1); seed <= 50; seed++ {
		first, err := SampleWorld(rand.New(rand.NewSource(seed)), state, "a", tr, nil)
		require.NoError(t, err)
		second, err := SampleWorld(rand.New(rand.NewSource(seed)), state, "a", tr, nil)
		require.NoError(t, err)
		require.Equal(t, first, second, "seed %d", seed)
	}
}

// valueGroups counts the values held at least twice and the split cards.
func valueGroups(hand []domain.Card) (groups, splits int) {
	var counts [domain.MaxCardValue + 1]int
	for _, c := range hand {
		if c.IsSplit() {
			splits++
			continue
		}
		counts[c.Value]++
	}
	for _, n := range counts {
		if n >= 2 {
			groups++
		}
	}
	return groups, splits
}

// contiguous reports whether the standard cards of every value sit together.
func contiguous(hand []domain.Card) bool {
	closed := make(map[int]bool)
	for i, c := range hand {
		if c.IsSplit() {
			continue
		}
		if i > 0 && !hand[i-1].IsSplit() && hand[i-1].Value == c.Value {
			continue
		}
		if closed[c.Value] {
			return false
		}
		closed[c.Value] = true
	}
	return true
}

func TestSampleWorldFollowsGroupEvidence(t *testing.T) {
	state := dealtState(rand.New(rand.NewSource(21)), 3)

	plain := NewTracker(8)
	plain.Belief("b")
	grouped := NewTracker(8)
	for i := 0; i < 10; i++ {
		grouped.ObservePlay("b", comboOf(4, 1, 2, 3), 0, 8)
	}
	require.Greater(t, grouped.Belief("b").Pairs, 0.95)

	const rounds = 500
	sample := func(tr *Tracker) (groups float64, splits, together int) {
		rng := rand.New(rand.NewSource(5))
		for i := 0; i < rounds; i++ {
			world, err := SampleWorld(rng, state, "a", tr, nil)
			require.NoError(t, err)
			hand := world.Players[1].Hand
			g, s := valueGroups(hand)
			groups += float64(g)
			splits += s
			if contiguous(hand) {
				together++
			}
		}
		return groups / rounds, splits, together
	}
	plainGroups, plainSplits, plainTogether := sample(plain)
	groupedGroups, groupedSplits, groupedTogether := sample(grouped)

	assert.Greater(t, plainGroups, 0.0)
	assert.Greater(t, groupedGroups, plainGroups+0.5, "pair evidence should deal more same-value groups")
	assert.Positive(t, plainSplits)
	assert.Positive(t, groupedSplits, "blind slots still deal split cards")
	assert.Greater(t, groupedTogether, rounds*9/10)
	assert.Less(t, plainTogether, groupedTogether)
}

func TestGroupValues(t *testing.T) {
	hand := []domain.Card{
		domain.NewStandardCard(1, 3),
		domain.NewStandardCard(2, 5),
		domain.NewSplitCard(3, 3, 4),
		domain.NewStandardCard(4, 3),
		domain.NewStandardCard(5, 5),
	}
	out := groupValues(hand)

	ids := make([]int, len(out))
	for i, c := range out {
		ids[i] = c.ID
	}
	assert.Equal(t, []int{1, 4, 2, 5, 3}, ids)
	assert.True(t, contiguous(out))
	assert.False(t, contiguous(hand))
}
