package bot

import (
	"context"

	"ringo/internal/bot/internal"
	"ringo/internal/domain"
)

// TurnAction is the bot's choice at the start of its turn.
type TurnAction string

const (
	TurnPlay TurnAction = "play"
	TurnDraw TurnAction = "draw"
)

// TurnDecision is the result of DecideTurn. Indices and Resolutions are set
// for plays and can be passed to the service unchanged.
type TurnDecision struct {
	Action      TurnAction
	Indices     []int
	Resolutions map[int]int
	Utility     float64
}

// CaptureAction is the bot's disposition of a pending capture.
type CaptureAction string

const (
	CaptureDiscardAll CaptureAction = "discard_all"
	CaptureInsertAll  CaptureAction = "insert_all"
)

// Insertion places one captured card at a hand position.
type Insertion = internal.Insertion

// CaptureDecision is the result of DecideCapture. Steps are ordered so that
// applying them one by one rebuilds the planned hand.
type CaptureDecision struct {
	Action CaptureAction
	Steps  []Insertion
}

// InsertionAction is what happens to a drawn card that is not played.
type InsertionAction string

const (
	InsertionInsert  InsertionAction = "insert"
	InsertionDiscard InsertionAction = "discard"
)

// InsertionDecision is the result of DecideInsertion.
type InsertionDecision struct {
	Action   InsertionAction
	Position int
}

// RescueAction chooses between a rescue play and keeping the drawn card.
type RescueAction string

const (
	RescuePlay   RescueAction = "rescue"
	RescueInsert RescueAction = "insert"
)

// RescueDecision is the result of DecideRescue. Option is set for rescues.
type RescueDecision struct {
	Action RescueAction
	Option domain.RescueOption
}

// Brain is the interface that all bot strategies must implement. Every call
// returns exactly one structurally legal decision for the given state.
type Brain interface {
	DecideTurn(ctx context.Context, state *domain.GameState, botID string, room *Room) TurnDecision
	DecideCapture(ctx context.Context, state *domain.GameState, botID string, captured []domain.Card, room *Room) CaptureDecision
	DecideInsertion(ctx context.Context, state *domain.GameState, botID string, card domain.Card, room *Room) InsertionDecision
	DecideRescue(ctx context.Context, state *domain.GameState, botID string, drawn domain.Card, possible bool, options []domain.RescueOption, room *Room) RescueDecision
}
