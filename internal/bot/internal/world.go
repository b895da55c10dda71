package internal

import (
	"math/rand"
	"slices"

	"ringo/internal/domain"
)

// World is a lightweight snapshot of a game used by rollouts. Hands and piles
// are treated as immutable: every change builds a new slice, so Clone only
// copies headers and clones can share backing arrays.
type World struct {
	Hands      [][]domain.Card
	Draw       []domain.Card
	Discard    []domain.Card
	Table      *domain.Combo
	TableOwner int
	Current    int
}

// NewWorld builds a snapshot from a game state. Pending captures and drawn
// cards are left out; the action under evaluation decides where they go.
func NewWorld(s *domain.GameState) World {
	w := World{
		Hands:      make([][]domain.Card, len(s.Players)),
		Draw:       slices.Clip(s.DrawPile),
		Discard:    slices.Clip(s.DiscardPile),
		TableOwner: -1,
		Current:    s.Current,
	}
	for i, p := range s.Players {
		w.Hands[i] = slices.Clip(p.Hand)
	}
	if s.Table != nil {
		combo := s.Table.Combo
		w.Table = &combo
		w.TableOwner = s.PlayerIndex(s.Table.Owner)
	}
	return w
}

// Clone returns a snapshot that can be advanced independently.
func (w World) Clone() World {
	out := w
	out.Hands = make([][]domain.Card, len(w.Hands))
	for i, h := range w.Hands {
		out.Hands[i] = slices.Clip(h)
	}
	out.Draw = slices.Clip(w.Draw)
	out.Discard = slices.Clip(w.Discard)
	return out
}

// Play puts combo from seat's hand on the table. The beaten combo is
// discarded.
func (w *World) Play(seat int, combo domain.Combo) {
	w.Hands[seat] = domain.RemovePositions(w.Hands[seat], combo.Positions)
	w.discardTable()
	w.Table = &combo
	w.TableOwner = seat
}

// DrawCard pops the top of the draw pile, recycling the discard pile when
// needed. It reports false when no card is left anywhere.
func (w *World) DrawCard(rng *rand.Rand) (domain.Card, bool) {
	if len(w.Draw) == 0 {
		if len(w.Discard) == 0 {
			return domain.Card{}, false
		}
		w.Draw = domain.ShuffleDeck(rng, domain.PlainCards(w.Discard))
		w.Discard = nil
	}
	top := len(w.Draw) - 1
	card := w.Draw[top]
	w.Draw = slices.Clip(w.Draw[:top])
	return card, true
}

// Advance hands the turn to the next seat and closes the pile when the table
// combo came back to its owner.
func (w *World) Advance() {
	w.Current = (w.Current + 1) % len(w.Hands)
	if w.Table != nil && w.TableOwner == w.Current {
		w.discardTable()
	}
}

func (w *World) discardTable() {
	if w.Table == nil {
		return
	}
	w.Discard = append(slices.Clip(w.Discard), domain.PlainCards(w.Table.Cards)...)
	w.Table = nil
	w.TableOwner = -1
}

// TakeTurn lets seat act with policy: play when it can, otherwise draw and
// either rescue with the drawn card or insert it at the best position. It
// reports false when the seat had to draw and no card was left.
func (w *World) TakeTurn(seat int, policy SeatPolicy, rng *rand.Rand) bool {
	hand := w.Hands[seat]
	if combo, ok := policy.Play(hand, w.Table); ok {
		w.Play(seat, combo)
		return true
	}
	card, ok := w.DrawCard(rng)
	if !ok {
		return false
	}
	options := domain.CheckInsertionPossibility(hand, card, w.Table)
	if opt, ok := policy.Rescue(hand, options); ok {
		w.Hands[seat] = domain.InsertCard(hand, opt.InsertPosition, card)
		w.Play(seat, opt.Combo)
		return true
	}
	pos, _ := BestInsertion(hand, card)
	w.Hands[seat] = domain.InsertCard(hand, pos, card)
	return true
}

// SeatPolicy is a fast playing policy used inside rollouts.
type SeatPolicy interface {
	Play(hand []domain.Card, table *domain.Combo) (domain.Combo, bool)
	Rescue(hand []domain.Card, options []domain.RescueOption) (domain.RescueOption, bool)
}

// ShapePolicy plays the combo that leaves the cheapest hand shape.
type ShapePolicy struct{}

func (ShapePolicy) Play(hand []domain.Card, table *domain.Combo) (domain.Combo, bool) {
	combos := domain.FindValidCombos(hand, table)
	if len(combos) == 0 {
		return domain.Combo{}, false
	}
	best, bestCost := 0, HandCost(domain.RemovePositions(hand, combos[0].Positions))
	for i := 1; i < len(combos); i++ {
		cost := HandCost(domain.RemovePositions(hand, combos[i].Positions))
		if cost < bestCost || (cost == bestCost && preferShape(combos[i], combos[best], table)) {
			best, bestCost = i, cost
		}
	}
	return combos[best], true
}

// preferShape breaks cost ties: on an empty table bigger combos first, when
// beating the smallest sufficient size first; then the higher value.
func preferShape(a, b domain.Combo, table *domain.Combo) bool {
	if a.Size != b.Size {
		if table == nil {
			return a.Size > b.Size
		}
		return a.Size < b.Size
	}
	return a.Value > b.Value
}

func (ShapePolicy) Rescue(hand []domain.Card, options []domain.RescueOption) (domain.RescueOption, bool) {
	if len(options) == 0 {
		return domain.RescueOption{}, false
	}
	best, bestCost := 0, 0
	for i, opt := range options {
		virtual := domain.InsertCard(hand, opt.InsertPosition, domain.Card{})
		cost := HandCost(domain.RemovePositions(virtual, opt.Combo.Positions))
		if i == 0 || cost < bestCost {
			best, bestCost = i, cost
		}
	}
	return options[best], true
}

// SimplePolicy leads with the largest then highest combo and otherwise beats
// with the smallest legal combo.
type SimplePolicy struct{}

func (SimplePolicy) Play(hand []domain.Card, table *domain.Combo) (domain.Combo, bool) {
	combos := domain.FindValidCombos(hand, table)
	if len(combos) == 0 {
		return domain.Combo{}, false
	}
	best := combos[0]
	for _, c := range combos[1:] {
		if table == nil {
			if c.Size > best.Size || (c.Size == best.Size && c.Value > best.Value) {
				best = c
			}
			continue
		}
		if c.Size < best.Size || (c.Size == best.Size && c.Value < best.Value) {
			best = c
		}
	}
	return best, true
}

func (SimplePolicy) Rescue(_ []domain.Card, options []domain.RescueOption) (domain.RescueOption, bool) {
	if len(options) == 0 {
		return domain.RescueOption{}, false
	}
	best := options[0]
	for _, o := range options[1:] {
		if o.Combo.Size < best.Combo.Size || (o.Combo.Size == best.Combo.Size && o.Combo.Value < best.Combo.Value) {
			best = o
		}
	}
	return best, true
}
