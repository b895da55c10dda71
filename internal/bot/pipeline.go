package bot

import (
	"ringo/internal/bot/brain"
	"ringo/internal/bot/internal"
	"ringo/internal/domain"
)

// BonusContext holds one candidate action while the heuristic bonus rules
// run over it. Combo is nil for a draw.
type BonusContext struct {
	Hand      []domain.Card
	Remaining []domain.Card
	Table     *domain.Combo
	Combo     *domain.Combo
	Weights   internal.PhaseWeights
	Opponents []*brain.Belief
	Bonus     float64
}

// BonusRule is a logic unit that adds to a candidate's heuristic bonus.
type BonusRule interface {
	Name() string
	Apply(ctx *BonusContext)
}

// DefaultBonusRules is the rule chain used by the nightmare brain.
var DefaultBonusRules = []BonusRule{
	&PlayOverDrawRule{},
	&ComboSizeRule{},
	&EfficientBeatRule{},
	&FragmentationRule{},
	&HandCostRule{},
	&PileClosingRule{},
}

// ApplyBonusRules runs rules in order and returns the accumulated bonus.
func ApplyBonusRules(ctx *BonusContext, rules []BonusRule) float64 {
	for _, r := range rules {
		r.Apply(ctx)
	}
	return ctx.Bonus
}

// PlayOverDrawRule rewards shedding cards at all.
type PlayOverDrawRule struct{}

func (r *PlayOverDrawRule) Name() string { return "PlayOverDraw" }

func (r *PlayOverDrawRule) Apply(ctx *BonusContext) {
	if ctx.Combo != nil {
		ctx.Bonus += ctx.Weights.PlayBonus
	}
}

// ComboSizeRule rewards every card beyond the first.
type ComboSizeRule struct{}

func (r *ComboSizeRule) Name() string { return "ComboSize" }

func (r *ComboSizeRule) Apply(ctx *BonusContext) {
	if ctx.Combo != nil {
		ctx.Bonus += ctx.Weights.SizeWeight * float64(ctx.Combo.Size-1)
	}
}

// EfficientBeatRule rewards beating the table without spending extra cards.
type EfficientBeatRule struct{}

func (r *EfficientBeatRule) Name() string { return "EfficientBeat" }

func (r *EfficientBeatRule) Apply(ctx *BonusContext) {
	if ctx.Combo != nil && ctx.Table != nil && ctx.Combo.Size == ctx.Table.Size {
		ctx.Bonus += ctx.Weights.EfficientBeatBonus
	}
}

// FragmentationRule rewards actions that bring split-up values together.
type FragmentationRule struct{}

func (r *FragmentationRule) Name() string { return "Fragmentation" }

func (r *FragmentationRule) Apply(ctx *BonusContext) {
	delta := internal.Fragmentation(ctx.Hand) - internal.Fragmentation(ctx.Remaining)
	ctx.Bonus += ctx.Weights.FragmentationWeight * float64(delta)
}

// HandCostRule rewards actions that leave a cheaper hand shape.
type HandCostRule struct{}

func (r *HandCostRule) Name() string { return "HandCost" }

func (r *HandCostRule) Apply(ctx *BonusContext) {
	delta := internal.HandCost(ctx.Hand) - internal.HandCost(ctx.Remaining)
	ctx.Bonus += ctx.Weights.CostWeight * float64(delta)
}

// PileClosingRule rewards big combos by the chance that every opponent has
// to draw rather than answer, which closes the pile in the bot's favour.
type PileClosingRule struct{}

// pileCloseMinSize is the smallest combo considered hard to answer.
const pileCloseMinSize = 4

func (r *PileClosingRule) Name() string { return "PileClosing" }

func (r *PileClosingRule) Apply(ctx *BonusContext) {
	if ctx.Combo == nil || ctx.Combo.Size < pileCloseMinSize {
		return
	}
	allDraw := 1.0
	for _, b := range ctx.Opponents {
		allDraw *= 1 - b.Respond(ctx.Combo.Size)
	}
	ctx.Bonus += ctx.Weights.PileCloseBonus * allDraw
}
