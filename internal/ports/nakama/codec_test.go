package nakama

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringo/internal/app"
	"ringo/internal/domain"
)

func TestDecodeMessage_Fields(t *testing.T) {
	body, err := decodeMessage([]byte(`{"indices":[0,2],"position":3,"action":"insert_one","resolutions":{"17":5}}`))
	require.NoError(t, err)

	indices, err := intsField(body, "indices")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, indices)

	pos, err := intField(body, "position")
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	res, err := resolutionsField(body, "resolutions")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{17: 5}, res)

	assert.Equal(t, "insert_one", stringField(body, "action"))
	assert.Equal(t, "", stringField(body, "missing"))
}

func TestDecodeMessage_Errors(t *testing.T) {
	_, err := decodeMessage([]byte(`{not json`))
	assert.Error(t, err)

	body, err := decodeMessage([]byte(`{"indices":[1.5],"position":"x","resolutions":{"a":1}}`))
	require.NoError(t, err)

	_, err = intsField(body, "indices")
	assert.ErrorContains(t, err, "integer")
	_, err = intField(body, "position")
	assert.ErrorContains(t, err, "number")
	_, err = intField(body, "card_id")
	assert.ErrorContains(t, err, "missing")
	_, err = resolutionsField(body, "resolutions")
	assert.ErrorContains(t, err, "bad card id")

	empty, err := decodeMessage(nil)
	require.NoError(t, err)
	res, err := resolutionsField(empty, "resolutions")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestCardValue(t *testing.T) {
	split := domain.NewSplitCard(7, 4, 5)
	split.Resolved = 5

	data, err := encodeMessage(map[string]any{"cards": cardsValue([]domain.Card{domain.NewStandardCard(1, 3), split})})
	require.NoError(t, err)

	var got struct {
		Cards []map[string]any `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Cards, 2)
	assert.NotContains(t, got.Cards[0], "alt")
	assert.Equal(t, float64(4), got.Cards[1]["value"])
	assert.Equal(t, float64(5), got.Cards[1]["alt"])
	assert.Equal(t, float64(5), got.Cards[1]["resolved"])
}

func TestEventMessage(t *testing.T) {
	tests := []struct {
		name string
		ev   app.Event
		op   int64
		key  string
	}{
		{name: "GameStarted", ev: app.Event{Kind: app.EventGameStarted, Payload: app.GameStartedPayload{GameID: "g", PlayerIDs: []string{"a", "b"}}}, op: OpGameStarted, key: "player_ids"},
		{name: "HandDealt", ev: app.Event{Kind: app.EventHandDealt, Payload: app.HandDealtPayload{PlayerID: "a"}}, op: OpHandDealt, key: "hand"},
		{name: "Inserted", ev: app.Event{Kind: app.EventDrawnCardInserted, Payload: app.DrawnCardPlacedPayload{PlayerID: "a"}}, op: OpDrawnCardInserted, key: "hand_count"},
		{name: "Discarded", ev: app.Event{Kind: app.EventDrawnCardDiscarded, Payload: app.DrawnCardPlacedPayload{PlayerID: "a"}}, op: OpDrawnCardDiscarded, key: "hand_count"},
		{name: "PileClosed", ev: app.Event{Kind: app.EventPileClosed, Payload: app.PileClosedPayload{OwnerID: "a", Combo: domain.Combo{Size: 2, Value: 3}}}, op: OpPileClosed, key: "combo"},
		{name: "GameEnded", ev: app.Event{Kind: app.EventGameEnded, Payload: app.GameEndedPayload{Stalled: true}}, op: OpGameEnded, key: "stalled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, fields, err := eventMessage(tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.op, op)
			assert.Contains(t, fields, tt.key)
			_, err = encodeMessage(fields)
			assert.NoError(t, err)
		})
	}

	_, _, err := eventMessage(app.Event{Kind: "bogus", Payload: 42})
	assert.Error(t, err)
}

func TestPublicStateValue_HidesForeignHands(t *testing.T) {
	view := domain.PublicState{
		ID:      "g",
		Status:  domain.StatusPlaying,
		Players: []domain.PublicPlayer{{ID: "a", HandCount: 2}, {ID: "b", HandCount: 3}},
		Hand:    []domain.Card{domain.NewStandardCard(1, 2), domain.NewStandardCard(2, 2)},
	}
	data, err := encodeMessage(publicStateValue(view))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got["hand"], 2)
	assert.NotContains(t, got, "table")
	assert.NotContains(t, got, "drawn")
}
