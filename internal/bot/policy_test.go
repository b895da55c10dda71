package bot

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringo/internal/app"
	"ringo/internal/domain"
)

func TestNightmare_DecideTurnIsAlwaysLegal(t *testing.T) {
	ctx := context.Background()
	b := fastNightmare()
	for seed := int64(1); seed <= 6; seed++ {
		svc := app.NewService(rand.New(rand.NewSource(seed)), domain.DefaultDeckSpec)
		res, err := svc.CreateGame([]app.Seat{{ID: "a"}, {ID: "b"}, {ID: "c"}}, "")
		require.NoError(t, err)
		room := NewRoom("r", domain.DefaultDeckSpec.HandSize, rand.New(rand.NewSource(seed)))
		room.Observe(res.Events)

		state := res.State
		for step := 0; step < 12 && state.Status == domain.StatusPlaying; step++ {
			cur := state.CurrentPlayer()
			agent := &Agent{ID: cur.ID, Brain: b}
			next, err := agent.Act(ctx, svc, state, room)
			require.NoError(t, err, "seed %d step %d phase %s", seed, step, state.Phase)
			require.NoError(t, domain.CheckConservation(next.State))
			room.Observe(next.Events)
			state = next.State
		}
	}
}

func TestNightmare_NoLegalPlayDraws(t *testing.T) {
	s := tableState(deal(1, 1, 2), [][]domain.Card{deal(10, 3, 4, 5)}, deal(20, 6, 7))
	s.Table = &domain.TableCombo{Combo: domain.Combo{Size: 3, Value: 8, Cards: deal(30, 8, 8, 8)}, Owner: "p1"}
	s.Deck = append(s.Deck, s.Table.Cards...)

	d := fastNightmare().DecideTurn(context.Background(), s, "bot", NewRoom("r", 8, rand.New(rand.NewSource(1))))
	assert.Equal(t, TurnDraw, d.Action)
}

func TestNightmare_EmergencyPlaysSmallestBeat(t *testing.T) {
	s := tableState(deal(1, 1, 5, 5), [][]domain.Card{deal(10, 3, 4)}, deal(20, 6, 7, 8))

	d := fastNightmare().DecideTurn(context.Background(), s, "bot", NewRoom("r", 8, rand.New(rand.NewSource(1))))
	require.Equal(t, TurnPlay, d.Action)
	assert.Equal(t, []int{0}, d.Indices)

	s.Table = &domain.TableCombo{Combo: domain.Combo{Size: 1, Value: 3, Cards: deal(30, 3)}, Owner: "p1"}
	s.Deck = append(s.Deck, s.Table.Cards...)
	d = fastNightmare().DecideTurn(context.Background(), s, "bot", NewRoom("r", 8, rand.New(rand.NewSource(1))))
	require.Equal(t, TurnPlay, d.Action)
	assert.Len(t, d.Indices, 1, "a single 5 is enough against a single 3")
}

func TestNightmare_WinningPlayIsTaken(t *testing.T) {
	s := tableState(deal(1, 6, 6, 6), [][]domain.Card{deal(10, 1, 2, 3, 4, 5, 7)}, deal(20, 1, 2, 3, 4, 5))
	s.Table = &domain.TableCombo{Combo: domain.Combo{Size: 2, Value: 7, Cards: deal(30, 7, 7)}, Owner: "p1"}
	s.Deck = append(s.Deck, s.Table.Cards...)

	d := fastNightmare().DecideTurn(context.Background(), s, "bot", NewRoom("r", 8, rand.New(rand.NewSource(2))))
	require.Equal(t, TurnPlay, d.Action)
	assert.Equal(t, []int{0, 1, 2}, d.Indices)
}

func TestNightmare_DecideCapture(t *testing.T) {
	b := fastNightmare()
	room := NewRoom("r", 8, rand.New(rand.NewSource(3)))
	ctx := context.Background()

	t.Run("Split card is always kept", func(t *testing.T) {
		s := tableState(deal(1, 1, 7, 2), [][]domain.Card{deal(10, 3, 4, 5, 6)}, deal(20, 8, 8))
		captured := deal(40, 34)
		s.Deck = append(s.Deck, captured...)
		s.Pending = &domain.PendingCapture{Owner: "bot", Cards: captured}
		s.Phase = domain.PhaseWaitingForCaptureDecision

		d := b.DecideCapture(ctx, s, "bot", captured, room)
		assert.Equal(t, CaptureInsertAll, d.Action)
		require.Len(t, d.Steps, 1)
		assert.Equal(t, 40, d.Steps[0].CardID)
	})

	t.Run("Completing a triple is kept", func(t *testing.T) {
		s := tableState(deal(1, 4, 4, 1), [][]domain.Card{deal(10, 3, 5, 6, 7)}, deal(20, 8, 8))
		captured := deal(40, 4)
		s.Deck = append(s.Deck, captured...)
		s.Pending = &domain.PendingCapture{Owner: "bot", Cards: captured}
		s.Phase = domain.PhaseWaitingForCaptureDecision

		d := b.DecideCapture(ctx, s, "bot", captured, room)
		assert.Equal(t, CaptureInsertAll, d.Action)
		require.Len(t, d.Steps, 1)
		assert.LessOrEqual(t, d.Steps[0].Position, 2)
	})

	t.Run("Nothing captured", func(t *testing.T) {
		s := tableState(deal(1, 1), [][]domain.Card{deal(10, 3)}, nil)
		assert.Equal(t, CaptureDiscardAll, b.DecideCapture(ctx, s, "bot", nil, room).Action)
	})
}

func TestNightmare_DecideInsertion(t *testing.T) {
	b := fastNightmare()
	s := tableState(deal(1, 2, 2, 3), [][]domain.Card{deal(10, 5, 6)}, nil)

	d := b.DecideInsertion(context.Background(), s, "bot", domain.NewStandardCard(50, 3), nil)
	assert.Equal(t, InsertionInsert, d.Action)
	assert.Equal(t, 2, d.Position, "the 3 joins the other 3")

	d = b.DecideInsertion(context.Background(), s, "bot", domain.NewStandardCard(51, 8), nil)
	assert.Equal(t, InsertionDiscard, d.Action)

	d = b.DecideInsertion(context.Background(), s, "bot", domain.NewSplitCard(52, 1, 2), nil)
	assert.Equal(t, InsertionInsert, d.Action, "a split card that can be a 2 matches the pair")
}

func TestNightmare_DecideRescue(t *testing.T) {
	b := fastNightmare()
	room := NewRoom("r", 8, rand.New(rand.NewSource(4)))
	ctx := context.Background()
	s := tableState(deal(1, 5, 1, 2, 7), [][]domain.Card{deal(10, 3, 4, 6, 6, 8)}, deal(20, 8, 8))
	s.Table = &domain.TableCombo{Combo: domain.Combo{Size: 1, Value: 3, Cards: deal(30, 3)}, Owner: "p1"}
	drawn := domain.NewStandardCard(40, 5)
	s.Deck = append(s.Deck, s.Table.Cards...)
	s.Deck = append(s.Deck, drawn)
	s.InFlight = &domain.InFlightCard{Owner: "bot", Card: drawn}
	s.Phase = domain.PhaseRingoCheck

	options := domain.CheckInsertionPossibility(s.Players[0].Hand, drawn, s.TableComboOrNil())
	require.NotEmpty(t, options)

	d := b.DecideRescue(ctx, s, "bot", drawn, false, options, room)
	assert.Equal(t, RescueInsert, d.Action)

	d = b.DecideRescue(ctx, s, "bot", drawn, true, options, room)
	require.Equal(t, RescuePlay, d.Action)
	assert.Equal(t, 2, d.Option.Combo.Size, "pairing with the 5 sheds two cards")
	assert.Equal(t, []int{0}, d.Option.HandPositions)
}
