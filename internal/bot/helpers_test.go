package bot

import (
	"fmt"

	"ringo/internal/bot/internal"
	"ringo/internal/config"
	"ringo/internal/domain"
)

// deal builds standard cards with ids from start upwards; a value of 45
// means a 4/5 split card.
func deal(start int, values ...int) []domain.Card {
	out := make([]domain.Card, len(values))
	for i, v := range values {
		if v > domain.MaxCardValue {
			out[i] = domain.NewSplitCard(start+i, v/10, v%10)
			continue
		}
		out[i] = domain.NewStandardCard(start+i, v)
	}
	return out
}

// tableState seats "bot" first and "p1".."pN" after it. The deck is the union
// of every card passed in.
func tableState(bot []domain.Card, others [][]domain.Card, draw []domain.Card) *domain.GameState {
	s := &domain.GameState{
		ID:       "g",
		Status:   domain.StatusPlaying,
		Phase:    domain.PhaseWaitingForPlayOrDraw,
		Turn:     1,
		DrawPile: domain.CloneCards(draw),
		Players:  []domain.Player{{ID: "bot", Hand: domain.CloneCards(bot)}},
	}
	s.Deck = append(s.Deck, bot...)
	for i, h := range others {
		s.Players = append(s.Players, domain.Player{ID: fmt.Sprintf("p%d", i+1), Hand: domain.CloneCards(h)})
		s.Deck = append(s.Deck, h...)
	}
	s.Deck = append(s.Deck, draw...)
	return s
}

func fastNightmare() *NightmareBot {
	cfg := config.Default().Bot
	return NewNightmareBot(TuningFromConfig(cfg), internal.Simulator{Samples: 4, Horizon: 2, Workers: 2})
}
