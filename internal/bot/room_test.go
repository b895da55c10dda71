package bot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringo/internal/app"
	"ringo/internal/domain"
)

func TestRoom_ObserveFeedsTracker(t *testing.T) {
	room := NewRoom("r", 6, rand.New(rand.NewSource(1)))
	pair := domain.Combo{Positions: []int{0, 1}, Cards: deal(1, 4, 4), Value: 4, Size: 2}
	kept := domain.NewStandardCard(9, 7)

	room.Observe([]app.Event{
		{Kind: app.EventGameStarted, Payload: app.GameStartedPayload{PlayerIDs: []string{"a", "b"}, HandSize: 8}},
		{Kind: app.EventComboPlayed, Payload: app.ComboPlayedPayload{PlayerID: "a", Combo: pair, HandCount: 6}},
		{Kind: app.EventCardDrawn, Payload: app.CardDrawnPayload{PlayerID: "b", HandCount: 8, TableSize: 2, TableValue: 4}},
		{Kind: app.EventComboPlayed, Payload: app.ComboPlayedPayload{PlayerID: "b", Combo: pair, HandCount: 6, BeatenSize: 2, BeatenValue: 4}},
		{Kind: app.EventCaptureResolved, Payload: app.CaptureResolvedPayload{PlayerID: "b", Action: app.CaptureInsertOne, Cards: []domain.Card{kept}, HandCount: 7}},
	})

	assert.Equal(t, 8, room.HandSize)
	a, ok := room.Tracker.Lookup("a")
	require.True(t, ok)
	assert.Greater(t, a.Pairs, 0.5)
	assert.Greater(t, a.Respond(2), 0.5)
	assert.Equal(t, 6, a.HandSize)

	b, ok := room.Tracker.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 1, b.Draws)
	assert.Equal(t, 1, b.Beats)
	assert.Equal(t, 1, b.PilesTaken)
	assert.Contains(t, b.Known, kept.ID)
	assert.Equal(t, 7, b.HandSize)
}

func TestRoom_ObserveSkipsTargetedEvents(t *testing.T) {
	room := NewRoom("r", 8, nil)
	room.Observe([]app.Event{{
		Kind:       app.EventComboPlayed,
		Payload:    app.ComboPlayedPayload{PlayerID: "secret", Combo: domain.Combo{Size: 1, Value: 2}},
		Recipients: []string{"secret"},
	}})
	_, ok := room.Tracker.Lookup("secret")
	assert.False(t, ok)
	assert.NotNil(t, room.Rand())
}

func TestRoom_GameStartResetsBeliefs(t *testing.T) {
	room := NewRoom("r", 8, rand.New(rand.NewSource(1)))
	room.Observe([]app.Event{{Kind: app.EventCardDrawn, Payload: app.CardDrawnPayload{PlayerID: "a", HandCount: 9}}})
	room.Observe([]app.Event{{Kind: app.EventGameStarted, Payload: app.GameStartedPayload{PlayerIDs: []string{"a"}, HandSize: 8}}})

	a, ok := room.Tracker.Lookup("a")
	require.True(t, ok)
	assert.Zero(t, a.Draws)
}
