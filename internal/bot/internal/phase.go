package internal

import "ringo/internal/domain"

// endgameHandSize is the hand size at which the game counts as an endgame.
const endgameHandSize = 3

// GamePhase describes the current strategic stage of a game.
type GamePhase int

const (
	// PhaseOpening indicates every player still holds the dealt hand size.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates no one has reached the endgame threshold yet.
	PhaseMid
	// PhaseEnd indicates some player holds endgameHandSize cards or fewer.
	PhaseEnd
)

func (p GamePhase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseEnd:
		return "end"
	default:
		return "mid"
	}
}

// DetectPhase infers the phase from the players' hand sizes.
func DetectPhase(state *domain.GameState, dealt int) GamePhase {
	if state == nil || len(state.Players) == 0 {
		return PhaseMid
	}

	opening := true
	for _, p := range state.Players {
		if len(p.Hand) <= endgameHandSize {
			return PhaseEnd
		}
		if len(p.Hand) != dealt {
			opening = false
		}
	}
	if opening && state.Table == nil {
		return PhaseOpening
	}
	return PhaseMid
}
