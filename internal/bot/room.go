package bot

import (
	"math/rand"

	"ringo/internal/app"
	"ringo/internal/bot/brain"
	"ringo/internal/domain"
)

// Room is the bot context owned by one match. It carries the belief tracker
// fed from the match's public events and the random source used by every
// decision taken in that match. A Room is not safe for concurrent use; the
// match loop that owns it serializes access.
type Room struct {
	Key      string
	HandSize int
	Tracker  *brain.Tracker
	rng      *rand.Rand
}

// NewRoom creates the bot context for a match dealing handSize cards.
func NewRoom(key string, handSize int, rng *rand.Rand) *Room {
	if rng == nil {
		rng = app.NewRand()
	}
	return &Room{Key: key, HandSize: handSize, Tracker: brain.NewTracker(handSize), rng: rng}
}

// Rand returns the room's random source.
func (r *Room) Rand() *rand.Rand {
	return r.rng
}

// Observe folds public match events into the tracker. Targeted events are
// ignored so no player's private information leaks into the beliefs.
func (r *Room) Observe(events []app.Event) {
	for _, ev := range events {
		if len(ev.Recipients) > 0 {
			continue
		}
		r.observe(ev)
	}
}

func (r *Room) observe(ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		r.HandSize = p.HandSize
		r.Tracker.Reset()
		for _, id := range p.PlayerIDs {
			r.Tracker.ObserveHandSize(id, p.HandSize)
		}
	case app.ComboPlayedPayload:
		r.Tracker.ObservePlay(p.PlayerID, p.Combo, p.BeatenSize, p.HandCount)
	case app.CardDrawnPayload:
		r.Tracker.ObserveDraw(p.PlayerID, p.TableSize, p.TableValue, p.HandCount)
	case app.CaptureResolvedPayload:
		switch p.Action {
		case app.CaptureInsertOne:
			for _, c := range p.Cards {
				r.Tracker.ObserveCaptureInsert(p.PlayerID, c, p.HandCount)
			}
		case app.CaptureDiscardAll:
			r.Tracker.ObserveCaptureDiscard(p.PlayerID, p.HandCount)
		}
	case app.DrawnCardPlacedPayload:
		r.Tracker.ObserveHandSize(p.PlayerID, p.HandCount)
	}
}

// opponents returns the seats other than botID that still hold cards.
func opponents(state *domain.GameState, botID string) []*domain.Player {
	out := make([]*domain.Player, 0, len(state.Players))
	for i := range state.Players {
		p := &state.Players[i]
		if p.ID != botID && len(p.Hand) > 0 {
			out = append(out, p)
		}
	}
	return out
}
