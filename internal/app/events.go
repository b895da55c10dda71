package app

import "ringo/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted        EventKind = "game_started"
	EventHandDealt          EventKind = "hand_dealt"
	EventComboPlayed        EventKind = "combo_played"
	EventCaptureAwaiting    EventKind = "capture_awaiting"
	EventCaptureResolved    EventKind = "capture_resolved"
	EventCardDrawn          EventKind = "card_drawn"
	EventDrawnCardRevealed  EventKind = "drawn_card_revealed"
	EventDrawnCardInserted  EventKind = "drawn_card_inserted"
	EventDrawnCardDiscarded EventKind = "drawn_card_discarded"
	EventDeckRecycled       EventKind = "deck_recycled"
	EventPileClosed         EventKind = "pile_closed"
	EventTurnChanged        EventKind = "turn_changed"
	EventGameEnded          EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	GameID        string
	PlayerIDs     []string
	FirstPlayerID string
	HandSize      int
	DrawCount     int
}

type HandDealtPayload struct {
	PlayerID string
	Hand     []domain.Card
}

type ComboPlayedPayload struct {
	PlayerID  string
	Combo     domain.Combo
	Rescue    bool
	HandCount int
	// BeatenSize and BeatenValue describe the combo that was replaced; zero
	// when the table was empty.
	BeatenSize  int
	BeatenValue int
}

type CaptureAwaitingPayload struct {
	PlayerID string
	Cards    []domain.Card
}

type CaptureResolvedPayload struct {
	PlayerID  string
	Action    CaptureKind
	Cards     []domain.Card // cards discarded or the single card taken into hand
	Remaining int
	HandCount int
}

type CardDrawnPayload struct {
	PlayerID  string
	HandCount int
	DrawCount int
	// TableSize and TableValue describe the combo the player declined to beat.
	TableSize  int
	TableValue int
}

type DrawnCardRevealedPayload struct {
	PlayerID      string
	Card          domain.Card
	RescueOptions []domain.RescueOption
}

type DrawnCardPlacedPayload struct {
	PlayerID  string
	HandCount int
}

type DeckRecycledPayload struct {
	DrawCount int
}

type PileClosedPayload struct {
	OwnerID string
	Combo   domain.Combo
}

type TurnChangedPayload struct {
	PlayerID string
	Turn     int
}

type GameEndedPayload struct {
	WinnerID string
	Stalled  bool
}
