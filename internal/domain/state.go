package domain

import (
	"fmt"
	"sort"
)

// Status represents the lifecycle stage of a game.
type Status string

const (
	// StatusLobby is the pre-game state where players can join.
	StatusLobby Status = "lobby"
	// StatusPlaying is the active game state where cards are played.
	StatusPlaying Status = "playing"
	// StatusOver is the state after a player emptied their hand.
	StatusOver Status = "over"
)

// TurnPhase is the step of the active player's turn.
type TurnPhase string

const (
	PhaseWaitingForPlayOrDraw      TurnPhase = "waiting_for_play_or_draw"
	PhaseProcessingPlay            TurnPhase = "processing_play"
	PhaseWaitingForCaptureDecision TurnPhase = "waiting_for_capture_decision"
	PhaseProcessingDraw            TurnPhase = "processing_draw"
	PhaseRingoCheck                TurnPhase = "ringo_check"
	PhaseGameOver                  TurnPhase = "game_over"
)

// Player holds the state for a participant. Hand order is meaningful.
type Player struct {
	ID   string
	Name string
	Hand []Card
}

// PendingCapture is a beaten table combo awaiting its new owner's decision.
type PendingCapture struct {
	Owner string
	Cards []Card
}

// InFlightCard is a drawn card not yet placed anywhere.
type InFlightCard struct {
	Owner string
	Card  Card
}

// GameState is the authoritative snapshot of one game. Actions never mutate a
// GameState in place; they work on a Clone.
type GameState struct {
	ID          string
	Status      Status
	Players     []Player
	DrawPile    []Card // top of pile is the last element
	DiscardPile []Card
	Table       *TableCombo
	Current     int
	Phase       TurnPhase
	Pending     *PendingCapture
	InFlight    *InFlightCard
	Winner      string
	Turn        int

	// Deck is the full card set of this game. It is shared between clones and
	// must not be modified.
	Deck []Card
}

// PlayerIndex returns the seat index of the player, or -1.
func (s *GameState) PlayerIndex(id string) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// Player returns the player with the given id.
func (s *GameState) Player(id string) (*Player, bool) {
	i := s.PlayerIndex(id)
	if i < 0 {
		return nil, false
	}
	return &s.Players[i], true
}

// CurrentPlayer returns the active player.
func (s *GameState) CurrentPlayer() *Player {
	if s.Current < 0 || s.Current >= len(s.Players) {
		return nil
	}
	return &s.Players[s.Current]
}

// TableComboOrNil returns the table combo for beat checks.
func (s *GameState) TableComboOrNil() *Combo {
	if s.Table == nil {
		return nil
	}
	return &s.Table.Combo
}

// Clone returns a deep copy that shares only the immutable deck definition.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = Player{ID: p.ID, Name: p.Name, Hand: CloneCards(p.Hand)}
	}
	out.DrawPile = CloneCards(s.DrawPile)
	out.DiscardPile = CloneCards(s.DiscardPile)
	if s.Table != nil {
		t := *s.Table
		t.Combo = cloneCombo(s.Table.Combo)
		out.Table = &t
	}
	if s.Pending != nil {
		out.Pending = &PendingCapture{Owner: s.Pending.Owner, Cards: CloneCards(s.Pending.Cards)}
	}
	if s.InFlight != nil {
		f := *s.InFlight
		out.InFlight = &f
	}
	return &out
}

func cloneCombo(c Combo) Combo {
	out := c
	out.Positions = append([]int(nil), c.Positions...)
	out.Cards = CloneCards(c.Cards)
	if c.Resolutions != nil {
		out.Resolutions = make(map[int]int, len(c.Resolutions))
		for k, v := range c.Resolutions {
			out.Resolutions[k] = v
		}
	}
	return out
}

// CardCount returns the number of cards in every location of the state.
func (s *GameState) CardCount() int {
	n := len(s.DrawPile) + len(s.DiscardPile)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	if s.Table != nil {
		n += len(s.Table.Cards)
	}
	if s.Pending != nil {
		n += len(s.Pending.Cards)
	}
	if s.InFlight != nil {
		n++
	}
	return n
}

// CheckConservation verifies that every deck card is in exactly one place.
func CheckConservation(s *GameState) error {
	seen := make(map[int]string, len(s.Deck))
	place := func(where string, cards []Card) error {
		for _, c := range cards {
			if prev, dup := seen[c.ID]; dup {
				return &InconsistencyError{Op: "conservation", Detail: fmt.Sprintf("card %d in %s and %s", c.ID, prev, where)}
			}
			seen[c.ID] = where
		}
		return nil
	}
	for _, p := range s.Players {
		if err := place("hand "+p.ID, p.Hand); err != nil {
			return err
		}
	}
	if err := place("draw pile", s.DrawPile); err != nil {
		return err
	}
	if err := place("discard pile", s.DiscardPile); err != nil {
		return err
	}
	if s.Table != nil {
		if err := place("table", s.Table.Cards); err != nil {
			return err
		}
	}
	if s.Pending != nil {
		if err := place("pending capture", s.Pending.Cards); err != nil {
			return err
		}
	}
	if s.InFlight != nil {
		if err := place("in flight", []Card{s.InFlight.Card}); err != nil {
			return err
		}
	}
	var missing []int
	for _, c := range s.Deck {
		if _, ok := seen[c.ID]; !ok {
			missing = append(missing, c.ID)
		}
		delete(seen, c.ID)
	}
	if len(missing) > 0 {
		return &InconsistencyError{Op: "conservation", Detail: fmt.Sprintf("cards missing: %v", missing)}
	}
	if len(seen) > 0 {
		extra := make([]int, 0, len(seen))
		for id := range seen {
			extra = append(extra, id)
		}
		sort.Ints(extra)
		return &InconsistencyError{Op: "conservation", Detail: fmt.Sprintf("cards not in deck: %v", extra)}
	}
	return nil
}
