package bot

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog"

	"ringo/internal/bot/brain"
	"ringo/internal/bot/internal"
	"ringo/internal/domain"
)

// NightmareBot scores every candidate with rollouts over sampled hidden
// worlds plus the heuristic bonus rules, and overrides the search when an
// opponent is about to go out.
type NightmareBot struct {
	Tuning    internal.BotTuning
	Simulator internal.Simulator
	Rules     []BonusRule
}

// NewNightmareBot creates the bot with the default bonus rule chain.
func NewNightmareBot(tuning internal.BotTuning, sim internal.Simulator) *NightmareBot {
	return &NightmareBot{Tuning: tuning, Simulator: sim, Rules: DefaultBonusRules}
}

func (b *NightmareBot) sampler(state *domain.GameState, botID string, room *Room) internal.Sampler {
	return func(rng *rand.Rand) (*domain.GameState, error) {
		return brain.SampleWorld(rng, state, botID, room.Tracker, nil)
	}
}

// utilities runs the rollouts for actions and returns their utilities.
func (b *NightmareBot) utilities(ctx context.Context, state *domain.GameState, botID string, room *Room, actions []internal.Action) []float64 {
	stats := b.Simulator.Evaluate(ctx, room.rng, botID, b.sampler(state, botID, room), actions)
	out := make([]float64, len(stats))
	for i, st := range stats {
		out[i] = b.Tuning.Utility(st)
	}
	return out
}

func (b *NightmareBot) beliefs(state *domain.GameState, botID string, room *Room) []*brain.Belief {
	opps := opponents(state, botID)
	out := make([]*brain.Belief, 0, len(opps))
	for _, p := range opps {
		if bel, ok := room.Tracker.Lookup(p.ID); ok {
			out = append(out, bel)
		}
	}
	return out
}

// inDanger reports whether an opponent holds limit cards or fewer.
func inDanger(state *domain.GameState, botID string, limit int) bool {
	for _, p := range opponents(state, botID) {
		if len(p.Hand) <= limit {
			return true
		}
	}
	return false
}

// smallestBeat returns the combo with the fewest cards, lowest value first.
func smallestBeat(combos []domain.Combo) domain.Combo {
	best := combos[0]
	for _, c := range combos[1:] {
		if c.Size < best.Size || (c.Size == best.Size && c.Value < best.Value) {
			best = c
		}
	}
	return best
}

func playDecision(c domain.Combo, utility float64) TurnDecision {
	return TurnDecision{Action: TurnPlay, Indices: c.Positions, Resolutions: c.Resolutions, Utility: utility}
}

func (b *NightmareBot) DecideTurn(ctx context.Context, state *domain.GameState, botID string, room *Room) TurnDecision {
	logger := zerolog.Ctx(ctx).With().Str("bot", botID).Str("room", room.Key).Logger()
	me, ok := state.Player(botID)
	if !ok {
		return TurnDecision{Action: TurnDraw}
	}
	table := state.TableComboOrNil()
	combos := domain.FindValidCombos(me.Hand, table)
	if len(combos) == 0 {
		logger.Debug().Msg("no legal play, drawing")
		return TurnDecision{Action: TurnDraw}
	}
	if inDanger(state, botID, b.Tuning.EmergencyHandSize) {
		c := smallestBeat(combos)
		logger.Debug().Stringer("combo", c).Msg("emergency play")
		return playDecision(c, 0)
	}

	canDraw := table != nil && (len(state.DrawPile) > 0 || len(state.DiscardPile) > 0)
	actions := make([]internal.Action, 0, len(combos)+1)
	for _, c := range combos {
		actions = append(actions, internal.Action{Kind: internal.ActionPlay, Combo: c})
	}
	if canDraw {
		actions = append(actions, internal.Action{Kind: internal.ActionDraw})
	}
	utils := b.utilities(ctx, state, botID, room, actions)

	phase := internal.DetectPhase(state, room.HandSize)
	weights := b.Tuning.ForPhase(phase)
	beliefs := b.beliefs(state, botID, room)

	best, bestUtility := 0, 0.0
	for i := range combos {
		combo := combos[i]
		bctx := &BonusContext{
			Hand:      me.Hand,
			Remaining: domain.RemovePositions(me.Hand, combo.Positions),
			Table:     table,
			Combo:     &combo,
			Weights:   weights,
			Opponents: beliefs,
		}
		u := utils[i] + ApplyBonusRules(bctx, b.Rules)
		logger.Debug().Stringer("combo", combo).Float64("utility", u).Msg("candidate")
		if i == 0 || u > bestUtility {
			best, bestUtility = i, u
		}
	}

	if canDraw {
		bctx := &BonusContext{Hand: me.Hand, Remaining: me.Hand, Table: table, Weights: weights, Opponents: beliefs}
		drawUtility := utils[len(combos)] + ApplyBonusRules(bctx, b.Rules)
		logger.Debug().Float64("utility", drawUtility).Msg("draw candidate")
		if drawUtility > bestUtility+b.Tuning.DrawMargin {
			return TurnDecision{Action: TurnDraw, Utility: drawUtility}
		}
	}
	logger.Debug().Str("phase", phase.String()).Stringer("combo", combos[best]).Msg("play chosen")
	return playDecision(combos[best], bestUtility)
}

// countTriples counts groups of three or more cards.
func countTriples(hand []domain.Card) int {
	n := 0
	for _, g := range internal.Groups(hand) {
		if g.Size() >= 3 {
			n++
		}
	}
	return n
}

func (b *NightmareBot) DecideCapture(ctx context.Context, state *domain.GameState, botID string, captured []domain.Card, room *Room) CaptureDecision {
	discard := CaptureDecision{Action: CaptureDiscardAll}
	me, ok := state.Player(botID)
	if !ok || len(captured) == 0 {
		return discard
	}
	plan := internal.FindOptimalInsertion(me.Hand, captured)
	keep := CaptureDecision{Action: CaptureInsertAll, Steps: plan.Steps}
	for _, c := range captured {
		if c.IsSplit() {
			return keep
		}
	}
	if countTriples(plan.Hand) > countTriples(me.Hand) {
		return keep
	}

	utils := b.utilities(ctx, state, botID, room, []internal.Action{
		{Kind: internal.ActionKeep, Hand: plan.Hand},
		{Kind: internal.ActionKeep, Hand: me.Hand, Discard: captured},
	})
	zerolog.Ctx(ctx).Debug().Str("bot", botID).Float64("keep", utils[0]).Float64("discard", utils[1]).Msg("capture compared")
	if utils[0] > utils[1] {
		return keep
	}
	return discard
}

// matchesValue reports whether card can share a value with a hand card.
func matchesValue(hand []domain.Card, card domain.Card) bool {
	for _, h := range hand {
		for _, v := range card.Candidates() {
			if h.CanBe(v) {
				return true
			}
		}
	}
	return false
}

func (b *NightmareBot) DecideInsertion(_ context.Context, state *domain.GameState, botID string, card domain.Card, _ *Room) InsertionDecision {
	me, ok := state.Player(botID)
	if !ok {
		return InsertionDecision{Action: InsertionDiscard}
	}
	pos, cost := internal.BestInsertion(me.Hand, card)
	if matchesValue(me.Hand, card) || cost < internal.HandCost(me.Hand) {
		return InsertionDecision{Action: InsertionInsert, Position: pos}
	}
	return InsertionDecision{Action: InsertionDiscard}
}

// bestRescue prefers the option shedding the most cards, then the one
// leaving the cheapest hand.
func bestRescue(hand []domain.Card, drawn domain.Card, options []domain.RescueOption) domain.RescueOption {
	best, bestCost := 0, 0
	for i, opt := range options {
		virtual := domain.InsertCard(hand, opt.InsertPosition, drawn)
		cost := internal.HandCost(domain.RemovePositions(virtual, opt.Combo.Positions))
		if i == 0 || opt.Combo.Size > options[best].Combo.Size ||
			(opt.Combo.Size == options[best].Combo.Size && cost < bestCost) {
			best, bestCost = i, cost
		}
	}
	return options[best]
}

func (b *NightmareBot) DecideRescue(ctx context.Context, state *domain.GameState, botID string, drawn domain.Card, possible bool, options []domain.RescueOption, room *Room) RescueDecision {
	insert := RescueDecision{Action: RescueInsert}
	me, ok := state.Player(botID)
	if !ok || !possible || len(options) == 0 {
		return insert
	}
	opt := bestRescue(me.Hand, drawn, options)
	rescue := RescueDecision{Action: RescuePlay, Option: opt}
	if opt.Combo.Size >= 2 || inDanger(state, botID, b.Tuning.EmergencyHandSize) {
		return rescue
	}

	keep := internal.Action{Kind: internal.ActionKeep, Hand: me.Hand, Discard: []domain.Card{drawn}}
	if d := b.DecideInsertion(ctx, state, botID, drawn, room); d.Action == InsertionInsert {
		keep = internal.Action{Kind: internal.ActionKeep, Hand: domain.InsertCard(me.Hand, d.Position, drawn)}
	}
	utils := b.utilities(ctx, state, botID, room, []internal.Action{
		{Kind: internal.ActionPlay, Hand: domain.InsertCard(me.Hand, opt.InsertPosition, drawn), Combo: opt.Combo},
		keep,
	})
	zerolog.Ctx(ctx).Debug().Str("bot", botID).Float64("rescue", utils[0]).Float64("keep", utils[1]).Msg("rescue compared")
	if utils[0] >= utils[1] {
		return rescue
	}
	return insert
}
