package internal

// PhaseWeights tune the heuristic bonus for a specific phase.
type PhaseWeights struct {
	PlayBonus           float64
	SizeWeight          float64
	EfficientBeatBonus  float64
	FragmentationWeight float64
	CostWeight          float64
	PileCloseBonus      float64
}

// BotTuning defines the utility weights, phase weights and thresholds of the
// decision policy.
type BotTuning struct {
	WinWeight      float64
	TurnsWeight    float64
	OppWinWeight   float64
	FinisherWeight float64

	Opening PhaseWeights
	Mid     PhaseWeights
	End     PhaseWeights

	// DrawMargin is how much a draw must out-score the best play to be chosen.
	DrawMargin float64
	// EmergencyHandSize triggers the emergency override when an opponent
	// holds this many cards or fewer.
	EmergencyHandSize int
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// Utility scores rollout statistics:
//
//	Win*P(win) - Turns*E[turns] - OppWin*P(opponent wins soon) - Finisher*P(gives finisher)
func (t BotTuning) Utility(s Stats) float64 {
	return t.WinWeight*s.PWin -
		t.TurnsWeight*s.ExpectedTurns -
		t.OppWinWeight*s.POppWinsSoon -
		t.FinisherWeight*s.PGivesFinisher
}
