package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ringo/internal/bot/brain"
	"ringo/internal/bot/internal"
	"ringo/internal/domain"
)

func TestBonusRules(t *testing.T) {
	w := internal.PhaseWeights{
		PlayBonus:           10,
		SizeWeight:          4,
		EfficientBeatBonus:  3,
		FragmentationWeight: 2,
		CostWeight:          1,
		PileCloseBonus:      40,
	}
	hand := deal(1, 3, 3, 5, 3)
	combo := domain.Combo{Positions: []int{2}, Cards: hand[2:3], Value: 5, Size: 1}
	remaining := domain.RemovePositions(hand, combo.Positions)

	tests := []struct {
		name string
		rule BonusRule
		ctx  BonusContext
		want float64
	}{
		{name: "Play", rule: &PlayOverDrawRule{}, ctx: BonusContext{Combo: &combo}, want: 10},
		{name: "Draw", rule: &PlayOverDrawRule{}, ctx: BonusContext{}, want: 0},
		{name: "Size", rule: &ComboSizeRule{}, ctx: BonusContext{Combo: &domain.Combo{Size: 3}}, want: 8},
		{name: "Efficient", rule: &EfficientBeatRule{}, ctx: BonusContext{Combo: &combo, Table: &domain.Combo{Size: 1, Value: 4}}, want: 3},
		{name: "Oversized", rule: &EfficientBeatRule{}, ctx: BonusContext{Combo: &domain.Combo{Size: 2}, Table: &domain.Combo{Size: 1}}, want: 0},
		// 3,3,5,3 has one extra block of 3s; removing the 5 joins them
		{name: "Fragmentation", rule: &FragmentationRule{}, ctx: BonusContext{Hand: hand, Remaining: remaining}, want: 2},
		{name: "Cost", rule: &HandCostRule{}, ctx: BonusContext{Hand: hand, Remaining: remaining}, want: float64(internal.HandCost(hand) - internal.HandCost(remaining))},
		{name: "Small combo never closes", rule: &PileClosingRule{}, ctx: BonusContext{Combo: &combo}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.ctx
			ctx.Weights = w
			tt.rule.Apply(&ctx)
			assert.InDelta(t, tt.want, ctx.Bonus, 1e-9)
			assert.NotEmpty(t, tt.rule.Name())
		})
	}
}

func TestPileClosingRule_ScalesWithOpponents(t *testing.T) {
	tracker := brain.NewTracker(8)
	sure := tracker.Belief("a")
	sure.CanRespond[4] = 0
	unsure := tracker.Belief("b")

	big := domain.Combo{Size: 4, Value: 2}
	ctx := &BonusContext{Combo: &big, Weights: internal.PhaseWeights{PileCloseBonus: 40}, Opponents: []*brain.Belief{sure}}
	assert.InDelta(t, 40, ApplyBonusRules(ctx, []BonusRule{&PileClosingRule{}}), 1e-9)

	ctx = &BonusContext{Combo: &big, Weights: internal.PhaseWeights{PileCloseBonus: 40}, Opponents: []*brain.Belief{sure, unsure}}
	assert.InDelta(t, 20, ApplyBonusRules(ctx, []BonusRule{&PileClosingRule{}}), 1e-9)
}
