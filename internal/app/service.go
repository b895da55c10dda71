package app

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"lukechampine.com/frand"

	"ringo/internal/domain"
)

// Service contains the turn use-cases operating on domain state. Every action
// works on a clone of the given state; a rejected action leaves it untouched.
type Service struct {
	rng  *rand.Rand
	deck domain.DeckSpec
}

// NewService constructs a Service with provided rng or a randomly seeded
// default. A zero deck spec uses domain.DefaultDeckSpec.
func NewService(rng *rand.Rand, deck domain.DeckSpec) *Service {
	if rng == nil {
		rng = NewRand()
	}
	if deck.HandSize == 0 {
		deck = domain.DefaultDeckSpec
	}
	return &Service{rng: rng, deck: deck}
}

// NewRand returns a math/rand source seeded from frand.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(int64(frand.Uint64n(1 << 62))))
}

var (
	ErrNotPlaying           = errors.New("game not in playing phase")
	ErrTooFewPlayers        = errors.New("not enough players to start")
	ErrTooManyPlayers       = errors.New("too many players")
	ErrDuplicatePlayer      = errors.New("player seated twice")
	ErrDeckTooSmall         = errors.New("deck too small for this many players")
	ErrUnknownPlayer        = errors.New("player not found")
	ErrNotYourTurn          = errors.New("not your turn")
	ErrWrongPhase           = errors.New("action not allowed in this phase")
	ErrNoCardsToDraw        = errors.New("no cards left to draw")
	ErrNoDrawnCard          = errors.New("no drawn card to resolve")
	ErrInvalidPosition      = errors.New("insert position out of range")
	ErrNotCaptureOwner      = errors.New("capture belongs to another player")
	ErrCardNotFound         = errors.New("card not found")
	ErrUnknownCaptureAction = errors.New("unknown capture action")
	ErrNotStalled           = errors.New("game is not stalled")
)

// Seat is a player taking part in a new game.
type Seat struct {
	ID   string
	Name string
}

// CaptureKind selects how a pending capture is resolved.
type CaptureKind string

const (
	CaptureDiscardAll CaptureKind = "discard_all"
	CaptureInsertOne  CaptureKind = "insert_one"
)

// CaptureAction is a capture decision from the capture owner.
type CaptureAction struct {
	Kind     CaptureKind
	Position int
	CardID   int
}

// Result is the outcome of an accepted action.
type Result struct {
	State  *domain.GameState
	Events []Event

	// Drawn and RescueOptions are set by Draw.
	Drawn         *domain.Card
	RescueOptions []domain.RescueOption
	// Captured is set when a play leaves a capture pending.
	Captured []domain.Card
}

// CreateGame deals a fresh game. The previous winner leads when still seated,
// otherwise the first player is random.
func (s *Service) CreateGame(seats []Seat, previousWinnerID string) (Result, error) {
	if len(seats) < MinPlayersToStartGame {
		return Result{}, ErrTooFewPlayers
	}
	if len(seats) > MaxPlayers {
		return Result{}, ErrTooManyPlayers
	}
	seen := make(map[string]bool, len(seats))
	for _, seat := range seats {
		if seat.ID == "" || seen[seat.ID] {
			return Result{}, fmt.Errorf("%w: %q", ErrDuplicatePlayer, seat.ID)
		}
		seen[seat.ID] = true
	}

	deck := domain.NewDeck(s.deck)
	handSize := s.deck.HandSize
	if handSize*len(seats) >= len(deck) {
		return Result{}, ErrDeckTooSmall
	}
	shuffled := domain.ShuffleDeck(s.rng, deck)

	state := &domain.GameState{
		ID:     uuid.NewString(),
		Status: domain.StatusPlaying,
		Phase:  domain.PhaseWaitingForPlayOrDraw,
		Turn:   1,
		Deck:   deck,
	}

	events := make([]Event, 0, len(seats)+2)
	ids := make([]string, len(seats))
	for i, seat := range seats {
		hand := domain.CloneCards(shuffled[i*handSize : (i+1)*handSize])
		state.Players = append(state.Players, domain.Player{ID: seat.ID, Name: seat.Name, Hand: hand})
		ids[i] = seat.ID
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{PlayerID: seat.ID, Hand: domain.CloneCards(hand)},
			Recipients: []string{seat.ID},
		})
	}
	state.DrawPile = domain.CloneCards(shuffled[len(seats)*handSize:])

	state.Current = state.PlayerIndex(previousWinnerID)
	if state.Current < 0 {
		state.Current = s.rng.Intn(len(seats))
	}
	first := state.Players[state.Current].ID

	events = append(events,
		Event{
			Kind: EventGameStarted,
			Payload: GameStartedPayload{
				GameID:        state.ID,
				PlayerIDs:     ids,
				FirstPlayerID: first,
				HandSize:      handSize,
				DrawCount:     len(state.DrawPile),
			},
		},
		Event{Kind: EventTurnChanged, Payload: TurnChangedPayload{PlayerID: first, Turn: state.Turn}},
	)

	return Result{State: state, Events: events}, nil
}

// PublicView projects state for one viewer.
func (s *Service) PublicView(state *domain.GameState, viewerID string) domain.PublicState {
	return domain.Project(state, viewerID)
}

// checkTurn validates that playerID is the active player and the turn is in
// one of the allowed phases.
func checkTurn(state *domain.GameState, playerID string, phases ...domain.TurnPhase) error {
	if state == nil || state.Status != domain.StatusPlaying {
		return ErrNotPlaying
	}
	if state.PlayerIndex(playerID) < 0 {
		return ErrUnknownPlayer
	}
	if cur := state.CurrentPlayer(); cur == nil || cur.ID != playerID {
		return ErrNotYourTurn
	}
	for _, p := range phases {
		if state.Phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, state.Phase)
}

// Play places a combo from the active player's hand on the table.
func (s *Service) Play(state *domain.GameState, playerID string, indices []int, resolutions map[int]int) (Result, error) {
	if err := checkTurn(state, playerID, domain.PhaseWaitingForPlayOrDraw); err != nil {
		return Result{}, err
	}
	hand := state.CurrentPlayer().Hand
	combo, err := domain.ResolveCombo(hand, indices, resolutions)
	if err != nil {
		return Result{}, err
	}
	if !domain.ValidateBeat(state.TableComboOrNil(), combo) {
		return Result{}, domain.ErrDoesNotBeat
	}

	next := state.Clone()
	next.Phase = domain.PhaseProcessingPlay
	pl := next.CurrentPlayer()
	pl.Hand = domain.RemovePositions(pl.Hand, combo.Positions)

	return s.placeCombo(next, playerID, combo, false), nil
}

// Draw takes the top card of the draw pile into the in-flight slot.
func (s *Service) Draw(state *domain.GameState, playerID string) (Result, error) {
	if err := checkTurn(state, playerID, domain.PhaseWaitingForPlayOrDraw); err != nil {
		return Result{}, err
	}
	if len(state.DrawPile) == 0 && len(state.DiscardPile) == 0 {
		return Result{}, ErrNoCardsToDraw
	}

	next := state.Clone()
	var events []Event
	if len(next.DrawPile) == 0 {
		next.DrawPile = domain.ShuffleDeck(s.rng, domain.PlainCards(next.DiscardPile))
		next.DiscardPile = nil
		events = append(events, Event{Kind: EventDeckRecycled, Payload: DeckRecycledPayload{DrawCount: len(next.DrawPile)}})
	}

	top := len(next.DrawPile) - 1
	card := next.DrawPile[top]
	next.DrawPile = next.DrawPile[:top]
	next.InFlight = &domain.InFlightCard{Owner: playerID, Card: card}

	pl := next.CurrentPlayer()
	options := domain.CheckInsertionPossibility(pl.Hand, card, next.TableComboOrNil())
	if len(options) > 0 {
		next.Phase = domain.PhaseRingoCheck
	} else {
		next.Phase = domain.PhaseProcessingDraw
	}

	drawn := CardDrawnPayload{PlayerID: playerID, HandCount: len(pl.Hand), DrawCount: len(next.DrawPile)}
	if next.Table != nil {
		drawn.TableSize = next.Table.Size
		drawn.TableValue = next.Table.Value
	}
	events = append(events,
		Event{Kind: EventCardDrawn, Payload: drawn},
		Event{
			Kind:       EventDrawnCardRevealed,
			Payload:    DrawnCardRevealedPayload{PlayerID: playerID, Card: card, RescueOptions: options},
			Recipients: []string{playerID},
		},
	)

	return Result{State: next, Events: events, Drawn: &card, RescueOptions: options}, nil
}

// RescuePlay plays the drawn card together with adjacent hand cards, as if the
// card had been inserted at insertPosition. comboIndices are hand positions
// before the insertion.
func (s *Service) RescuePlay(state *domain.GameState, playerID string, comboIndices []int, insertPosition int, resolutions map[int]int) (Result, error) {
	if err := checkTurn(state, playerID, domain.PhaseRingoCheck, domain.PhaseProcessingDraw); err != nil {
		return Result{}, err
	}
	if state.InFlight == nil || state.InFlight.Owner != playerID {
		return Result{}, ErrNoDrawnCard
	}
	hand := state.CurrentPlayer().Hand
	if insertPosition < 0 || insertPosition > len(hand) {
		return Result{}, ErrInvalidPosition
	}

	virtual := domain.InsertCard(hand, insertPosition, state.InFlight.Card)
	positions := make([]int, 0, len(comboIndices)+1)
	for _, idx := range comboIndices {
		if idx < 0 || idx >= len(hand) {
			return Result{}, fmt.Errorf("%w: %d", domain.ErrOutOfBounds, idx)
		}
		if idx >= insertPosition {
			idx++
		}
		positions = append(positions, idx)
	}
	positions = append(positions, insertPosition)

	combo, err := domain.ResolveCombo(virtual, positions, resolutions)
	if err != nil {
		return Result{}, err
	}
	if !domain.ValidateBeat(state.TableComboOrNil(), combo) {
		return Result{}, domain.ErrDoesNotBeat
	}

	next := state.Clone()
	next.Phase = domain.PhaseProcessingPlay
	next.InFlight = nil
	pl := next.CurrentPlayer()
	pl.Hand = domain.RemovePositions(virtual, combo.Positions)

	return s.placeCombo(next, playerID, combo, true), nil
}

// InsertDrawnCard keeps the drawn card at position and ends the turn.
func (s *Service) InsertDrawnCard(state *domain.GameState, playerID string, position int) (Result, error) {
	if err := checkTurn(state, playerID, domain.PhaseRingoCheck, domain.PhaseProcessingDraw); err != nil {
		return Result{}, err
	}
	if state.InFlight == nil || state.InFlight.Owner != playerID {
		return Result{}, ErrNoDrawnCard
	}
	if position < 0 || position > len(state.CurrentPlayer().Hand) {
		return Result{}, ErrInvalidPosition
	}

	next := state.Clone()
	pl := next.CurrentPlayer()
	pl.Hand = domain.InsertCard(pl.Hand, position, next.InFlight.Card)
	next.InFlight = nil

	events := []Event{{
		Kind:    EventDrawnCardInserted,
		Payload: DrawnCardPlacedPayload{PlayerID: playerID, HandCount: len(pl.Hand)},
	}}
	if !s.checkWin(next, &events) {
		s.advanceTurn(next, &events)
	}
	return Result{State: next, Events: events}, nil
}

// DiscardDrawnCard puts the drawn card on the discard pile and ends the turn.
func (s *Service) DiscardDrawnCard(state *domain.GameState, playerID string) (Result, error) {
	if err := checkTurn(state, playerID, domain.PhaseRingoCheck, domain.PhaseProcessingDraw); err != nil {
		return Result{}, err
	}
	if state.InFlight == nil || state.InFlight.Owner != playerID {
		return Result{}, ErrNoDrawnCard
	}

	next := state.Clone()
	next.DiscardPile = append(next.DiscardPile, next.InFlight.Card)
	next.InFlight = nil

	events := []Event{{
		Kind:    EventDrawnCardDiscarded,
		Payload: DrawnCardPlacedPayload{PlayerID: playerID, HandCount: len(next.CurrentPlayer().Hand)},
	}}
	if !s.checkWin(next, &events) {
		s.advanceTurn(next, &events)
	}
	return Result{State: next, Events: events}, nil
}

// ResolveCapture applies the capture owner's decision on the pending capture.
// The turn advances once no captured card is left.
func (s *Service) ResolveCapture(state *domain.GameState, playerID string, action CaptureAction) (Result, error) {
	if err := checkTurn(state, playerID, domain.PhaseWaitingForCaptureDecision); err != nil {
		return Result{}, err
	}
	if state.Pending == nil {
		return Result{}, &domain.InconsistencyError{Op: "resolve capture", Detail: "capture phase without pending capture"}
	}
	if state.Pending.Owner != playerID {
		return Result{}, ErrNotCaptureOwner
	}

	next := state.Clone()
	pl := next.CurrentPlayer()
	payload := CaptureResolvedPayload{PlayerID: playerID, Action: action.Kind}

	switch action.Kind {
	case CaptureDiscardAll:
		payload.Cards = domain.CloneCards(next.Pending.Cards)
		next.DiscardPile = append(next.DiscardPile, next.Pending.Cards...)
		next.Pending = nil
	case CaptureInsertOne:
		idx := domain.IndexOfCard(next.Pending.Cards, action.CardID)
		if idx < 0 {
			return Result{}, fmt.Errorf("%w: %d", ErrCardNotFound, action.CardID)
		}
		if action.Position < 0 || action.Position > len(pl.Hand) {
			return Result{}, ErrInvalidPosition
		}
		card := next.Pending.Cards[idx]
		payload.Cards = []domain.Card{card}
		pl.Hand = domain.InsertCard(pl.Hand, action.Position, card)
		next.Pending.Cards = append(next.Pending.Cards[:idx], next.Pending.Cards[idx+1:]...)
		if len(next.Pending.Cards) == 0 {
			next.Pending = nil
		} else {
			payload.Remaining = len(next.Pending.Cards)
		}
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCaptureAction, action.Kind)
	}
	payload.HandCount = len(pl.Hand)

	events := []Event{{Kind: EventCaptureResolved, Payload: payload}}
	if s.checkWin(next, &events) {
		return Result{State: next, Events: events}, nil
	}
	if next.Pending == nil {
		s.advanceTurn(next, &events)
	}
	return Result{State: next, Events: events}, nil
}

// Stalled reports whether the active player can neither beat the table nor
// draw a card.
func (s *Service) Stalled(state *domain.GameState) bool {
	if state == nil || state.Status != domain.StatusPlaying || state.Phase != domain.PhaseWaitingForPlayOrDraw {
		return false
	}
	if len(state.DrawPile) > 0 || len(state.DiscardPile) > 0 {
		return false
	}
	cur := state.CurrentPlayer()
	return cur != nil && len(domain.FindValidCombos(cur.Hand, state.TableComboOrNil())) == 0
}

// EndStalled ends a stalled game without a winner.
func (s *Service) EndStalled(state *domain.GameState) (Result, error) {
	if !s.Stalled(state) {
		return Result{}, ErrNotStalled
	}
	next := state.Clone()
	next.Status = domain.StatusOver
	next.Phase = domain.PhaseGameOver
	return Result{State: next, Events: []Event{{Kind: EventGameEnded, Payload: GameEndedPayload{Stalled: true}}}}, nil
}

// placeCombo puts combo on the table for playerID, turning the previous table
// combo into a pending capture.
func (s *Service) placeCombo(next *domain.GameState, playerID string, combo domain.Combo, rescue bool) Result {
	payload := ComboPlayedPayload{
		PlayerID:  playerID,
		Combo:     combo,
		Rescue:    rescue,
		HandCount: len(next.CurrentPlayer().Hand),
	}
	if next.Table != nil {
		payload.BeatenSize = next.Table.Size
		payload.BeatenValue = next.Table.Value
		next.Pending = &domain.PendingCapture{Owner: playerID, Cards: domain.PlainCards(next.Table.Cards)}
	}
	next.Table = &domain.TableCombo{Combo: combo, Owner: playerID}

	events := []Event{{Kind: EventComboPlayed, Payload: payload}}
	result := Result{State: next}
	if s.checkWin(next, &events) {
		result.Events = events
		return result
	}
	if next.Pending != nil {
		next.Phase = domain.PhaseWaitingForCaptureDecision
		result.Captured = domain.CloneCards(next.Pending.Cards)
		events = append(events, Event{
			Kind:       EventCaptureAwaiting,
			Payload:    CaptureAwaitingPayload{PlayerID: playerID, Cards: domain.CloneCards(next.Pending.Cards)},
			Recipients: []string{playerID},
		})
		result.Events = events
		return result
	}
	s.advanceTurn(next, &events)
	result.Events = events
	return result
}

// checkWin ends the game when a hand is empty. Captured and in-flight cards go
// to the discard pile.
func (s *Service) checkWin(next *domain.GameState, events *[]Event) bool {
	winner := ""
	for _, p := range next.Players {
		if len(p.Hand) == 0 {
			winner = p.ID
			break
		}
	}
	if winner == "" {
		return false
	}
	if next.Pending != nil {
		next.DiscardPile = append(next.DiscardPile, next.Pending.Cards...)
		next.Pending = nil
	}
	if next.InFlight != nil {
		next.DiscardPile = append(next.DiscardPile, next.InFlight.Card)
		next.InFlight = nil
	}
	next.Status = domain.StatusOver
	next.Phase = domain.PhaseGameOver
	next.Winner = winner
	*events = append(*events, Event{Kind: EventGameEnded, Payload: GameEndedPayload{WinnerID: winner}})
	return true
}

// advanceTurn hands the turn to the next seat and closes the pile when the
// combo came back to its owner unbeaten.
func (s *Service) advanceTurn(next *domain.GameState, events *[]Event) {
	next.Current = (next.Current + 1) % len(next.Players)
	next.Turn++
	next.Phase = domain.PhaseWaitingForPlayOrDraw
	active := next.Players[next.Current].ID

	if next.Table != nil && next.Table.Owner == active {
		*events = append(*events, Event{
			Kind:    EventPileClosed,
			Payload: PileClosedPayload{OwnerID: active, Combo: next.Table.Combo},
		})
		next.DiscardPile = append(next.DiscardPile, domain.PlainCards(next.Table.Cards)...)
		next.Table = nil
	}
	*events = append(*events, Event{Kind: EventTurnChanged, Payload: TurnChangedPayload{PlayerID: active, Turn: next.Turn}})
}
