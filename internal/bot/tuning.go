package bot

import (
	"ringo/internal/bot/internal"
	"ringo/internal/config"
)

// DefaultTuning is the nightmare tuning for the built-in configuration.
var DefaultTuning = TuningFromConfig(config.Default().Bot)

// TuningFromConfig builds the policy tuning from the bot section of the
// configuration. Phase weights are fixed; the utility weights and thresholds
// come from the file.
func TuningFromConfig(c config.BotConfig) internal.BotTuning {
	return internal.BotTuning{
		WinWeight:      c.WinWeight,
		TurnsWeight:    c.TurnsWeight,
		OppWinWeight:   c.OppWinWeight,
		FinisherWeight: c.FinisherWeight,
		Opening: internal.PhaseWeights{
			PlayBonus:           10,
			SizeWeight:          4,
			EfficientBeatBonus:  3,
			FragmentationWeight: 2,
			CostWeight:          1,
			PileCloseBonus:      15,
		},
		Mid: internal.PhaseWeights{
			PlayBonus:           12,
			SizeWeight:          5,
			EfficientBeatBonus:  4,
			FragmentationWeight: 2.5,
			CostWeight:          1.2,
			PileCloseBonus:      20,
		},
		End: internal.PhaseWeights{
			PlayBonus:           15,
			SizeWeight:          6,
			EfficientBeatBonus:  2,
			FragmentationWeight: 1,
			CostWeight:          1.5,
			PileCloseBonus:      30,
		},
		DrawMargin:        c.DrawMargin,
		EmergencyHandSize: c.EmergencyHandSize,
	}
}

// SimulatorFromConfig builds the rollout simulator from the bot section.
func SimulatorFromConfig(c config.BotConfig) internal.Simulator {
	return internal.Simulator{Samples: c.Samples, Horizon: c.Horizon, Workers: c.Workers}
}
