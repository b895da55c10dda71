package nakama

import (
	"fmt"

	"ringo/internal/app"
)

// eventMessage maps an app event to its op code and wire fields.
func eventMessage(ev app.Event) (int64, map[string]any, error) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		return OpGameStarted, map[string]any{
			"game_id":         p.GameID,
			"player_ids":      stringsValue(p.PlayerIDs),
			"first_player_id": p.FirstPlayerID,
			"hand_size":       p.HandSize,
			"draw_count":      p.DrawCount,
		}, nil
	case app.HandDealtPayload:
		return OpHandDealt, map[string]any{
			"player_id": p.PlayerID,
			"hand":      cardsValue(p.Hand),
		}, nil
	case app.ComboPlayedPayload:
		return OpComboPlayed, map[string]any{
			"player_id":    p.PlayerID,
			"combo":        comboValue(p.Combo),
			"rescue":       p.Rescue,
			"hand_count":   p.HandCount,
			"beaten_size":  p.BeatenSize,
			"beaten_value": p.BeatenValue,
		}, nil
	case app.CaptureAwaitingPayload:
		return OpCaptureAwaiting, map[string]any{
			"player_id": p.PlayerID,
			"cards":     cardsValue(p.Cards),
		}, nil
	case app.CaptureResolvedPayload:
		return OpCaptureResolved, map[string]any{
			"player_id":  p.PlayerID,
			"action":     string(p.Action),
			"cards":      cardsValue(p.Cards),
			"remaining":  p.Remaining,
			"hand_count": p.HandCount,
		}, nil
	case app.CardDrawnPayload:
		return OpCardDrawn, map[string]any{
			"player_id":   p.PlayerID,
			"hand_count":  p.HandCount,
			"draw_count":  p.DrawCount,
			"table_size":  p.TableSize,
			"table_value": p.TableValue,
		}, nil
	case app.DrawnCardRevealedPayload:
		return OpDrawnCardRevealed, map[string]any{
			"player_id":      p.PlayerID,
			"card":           cardValue(p.Card),
			"rescue_options": rescueOptionsValue(p.RescueOptions),
		}, nil
	case app.DrawnCardPlacedPayload:
		op := OpDrawnCardInserted
		if ev.Kind == app.EventDrawnCardDiscarded {
			op = OpDrawnCardDiscarded
		}
		return op, map[string]any{
			"player_id":  p.PlayerID,
			"hand_count": p.HandCount,
		}, nil
	case app.DeckRecycledPayload:
		return OpDeckRecycled, map[string]any{"draw_count": p.DrawCount}, nil
	case app.PileClosedPayload:
		return OpPileClosed, map[string]any{
			"owner_id": p.OwnerID,
			"combo":    comboValue(p.Combo),
		}, nil
	case app.TurnChangedPayload:
		return OpTurnChanged, map[string]any{
			"player_id": p.PlayerID,
			"turn":      p.Turn,
		}, nil
	case app.GameEndedPayload:
		return OpGameEnded, map[string]any{
			"winner_id": p.WinnerID,
			"stalled":   p.Stalled,
		}, nil
	default:
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}
