package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ringo/internal/app"
	"ringo/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID    string
	Name  string
	Brain Brain
}

// Act asks the agent's brain for its next step and applies it through svc,
// exactly as a human action would be applied. A capture kept card by card is
// applied as one step; the events of every sub-action are merged.
func (a *Agent) Act(ctx context.Context, svc *app.Service, state *domain.GameState, room *Room) (app.Result, error) {
	if state == nil || state.Status != domain.StatusPlaying {
		return app.Result{}, app.ErrNotPlaying
	}
	if cur := state.CurrentPlayer(); cur == nil || cur.ID != a.ID {
		return app.Result{}, app.ErrNotYourTurn
	}

	switch state.Phase {
	case domain.PhaseWaitingForPlayOrDraw:
		d := a.Brain.DecideTurn(ctx, state, a.ID, room)
		if d.Action == TurnPlay {
			return svc.Play(state, a.ID, d.Indices, d.Resolutions)
		}
		return svc.Draw(state, a.ID)
	case domain.PhaseWaitingForCaptureDecision:
		return a.resolveCapture(ctx, svc, state, room)
	case domain.PhaseRingoCheck, domain.PhaseProcessingDraw:
		return a.placeDrawn(ctx, svc, state, room)
	default:
		return app.Result{}, fmt.Errorf("%w: %s", app.ErrWrongPhase, state.Phase)
	}
}

func (a *Agent) resolveCapture(ctx context.Context, svc *app.Service, state *domain.GameState, room *Room) (app.Result, error) {
	discardAll := app.CaptureAction{Kind: app.CaptureDiscardAll}
	if state.Pending == nil {
		return svc.ResolveCapture(state, a.ID, discardAll)
	}
	d := a.Brain.DecideCapture(ctx, state, a.ID, domain.CloneCards(state.Pending.Cards), room)
	if d.Action == CaptureDiscardAll || len(d.Steps) == 0 {
		return svc.ResolveCapture(state, a.ID, discardAll)
	}

	merged := app.Result{State: state}
	for _, step := range d.Steps {
		res, err := svc.ResolveCapture(merged.State, a.ID, app.CaptureAction{
			Kind:     app.CaptureInsertOne,
			Position: step.Position,
			CardID:   step.CardID,
		})
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("bot", a.ID).Int("card", step.CardID).Msg("capture step rejected, discarding the rest")
			res, err = svc.ResolveCapture(merged.State, a.ID, discardAll)
			if err != nil {
				return merged, err
			}
		}
		merged.State = res.State
		merged.Events = append(merged.Events, res.Events...)
		if res.State.Phase != domain.PhaseWaitingForCaptureDecision {
			break
		}
	}
	return merged, nil
}

func (a *Agent) placeDrawn(ctx context.Context, svc *app.Service, state *domain.GameState, room *Room) (app.Result, error) {
	if state.InFlight == nil || state.InFlight.Owner != a.ID {
		return app.Result{}, app.ErrNoDrawnCard
	}
	drawn := state.InFlight.Card
	hand := state.CurrentPlayer().Hand
	options := domain.CheckInsertionPossibility(hand, drawn, state.TableComboOrNil())
	possible := state.Phase == domain.PhaseRingoCheck && len(options) > 0

	if possible {
		d := a.Brain.DecideRescue(ctx, state, a.ID, drawn, possible, options, room)
		if d.Action == RescuePlay {
			return svc.RescuePlay(state, a.ID, d.Option.HandPositions, d.Option.InsertPosition, d.Option.Combo.Resolutions)
		}
	}
	ins := a.Brain.DecideInsertion(ctx, state, a.ID, drawn, room)
	if ins.Action == InsertionInsert {
		return svc.InsertDrawnCard(state, a.ID, ins.Position)
	}
	return svc.DiscardDrawnCard(state, a.ID)
}
