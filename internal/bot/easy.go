package bot

import (
	"context"

	"ringo/internal/bot/internal"
	"ringo/internal/domain"
)

// EasyBot plays the rollout opponent policy directly: lead big, answer small,
// keep cards only when they fit.
type EasyBot struct{}

func (EasyBot) DecideTurn(_ context.Context, state *domain.GameState, botID string, _ *Room) TurnDecision {
	me, ok := state.Player(botID)
	if !ok {
		return TurnDecision{Action: TurnDraw}
	}
	if c, ok := (internal.SimplePolicy{}).Play(me.Hand, state.TableComboOrNil()); ok {
		return playDecision(c, 0)
	}
	return TurnDecision{Action: TurnDraw}
}

func (EasyBot) DecideCapture(_ context.Context, state *domain.GameState, botID string, captured []domain.Card, _ *Room) CaptureDecision {
	me, ok := state.Player(botID)
	if !ok || len(captured) == 0 {
		return CaptureDecision{Action: CaptureDiscardAll}
	}
	plan := internal.FindOptimalInsertion(me.Hand, captured)
	if plan.Cost < internal.HandCost(me.Hand) {
		return CaptureDecision{Action: CaptureInsertAll, Steps: plan.Steps}
	}
	return CaptureDecision{Action: CaptureDiscardAll}
}

func (EasyBot) DecideInsertion(_ context.Context, state *domain.GameState, botID string, card domain.Card, _ *Room) InsertionDecision {
	me, ok := state.Player(botID)
	if !ok {
		return InsertionDecision{Action: InsertionDiscard}
	}
	pos, cost := internal.BestInsertion(me.Hand, card)
	if cost <= internal.HandCost(me.Hand) {
		return InsertionDecision{Action: InsertionInsert, Position: pos}
	}
	return InsertionDecision{Action: InsertionDiscard}
}

func (EasyBot) DecideRescue(_ context.Context, state *domain.GameState, botID string, _ domain.Card, possible bool, options []domain.RescueOption, _ *Room) RescueDecision {
	if _, ok := state.Player(botID); !ok || !possible {
		return RescueDecision{Action: RescueInsert}
	}
	if opt, ok := (internal.SimplePolicy{}).Rescue(nil, options); ok {
		return RescueDecision{Action: RescuePlay, Option: opt}
	}
	return RescueDecision{Action: RescueInsert}
}
