package brain

import (
	"sort"

	"ringo/internal/domain"
)

const (
	playStep    = 0.3
	respondStep = 0.2
	drawDecay   = 0.85
	refuseDecay = 0.8
	captureStep = 0.25
	neutral     = 0.5
)

// ValueRange is the plausible number of cards of one value in a hand.
type ValueRange struct {
	Min int
	Max int
}

// Clamp forces n into the range.
func (r ValueRange) Clamp(n int) int {
	if n < r.Min {
		return r.Min
	}
	if n > r.Max {
		return r.Max
	}
	return n
}

// Belief is the soft evidence gathered about one opponent's hand.
type Belief struct {
	PlayerID string
	// Ranges is indexed by card value; index 0 is unused.
	Ranges     [domain.MaxCardValue + 1]ValueRange
	Adjacency  float64
	Pairs      float64
	Triples    float64
	CanRespond map[int]float64
	Beats      int
	Draws      int
	PilesTaken int
	HandSize   int
	// Known holds cards seen entering the hand from a capture, by id.
	Known map[int]domain.Card
}

func newBelief(playerID string, handSize int) *Belief {
	b := &Belief{
		PlayerID:   playerID,
		Adjacency:  neutral,
		Pairs:      neutral,
		Triples:    neutral / 2,
		CanRespond: make(map[int]float64),
		HandSize:   handSize,
		Known:      make(map[int]domain.Card),
	}
	for v := domain.MinCardValue; v <= domain.MaxCardValue; v++ {
		b.Ranges[v] = ValueRange{Min: 0, Max: domain.DefaultDeckSpec.CopiesPerValue}
	}
	b.clampRanges()
	return b
}

// Respond returns the estimated probability of answering a combo of size k.
func (b *Belief) Respond(k int) float64 {
	if p, ok := b.CanRespond[k]; ok {
		return p
	}
	return neutral
}

// KnownCards returns the captured cards still believed to be in the hand,
// ordered by id.
func (b *Belief) KnownCards() []domain.Card {
	out := make([]domain.Card, 0, len(b.Known))
	for _, c := range b.Known {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clone returns an independent copy.
func (b *Belief) Clone() *Belief {
	out := *b
	out.CanRespond = make(map[int]float64, len(b.CanRespond))
	for k, v := range b.CanRespond {
		out.CanRespond[k] = v
	}
	out.Known = make(map[int]domain.Card, len(b.Known))
	for k, v := range b.Known {
		out.Known[k] = v
	}
	return &out
}

func (b *Belief) observePlay(combo domain.Combo, beat bool, handSize int) {
	if beat {
		b.Beats++
	}
	if combo.Size >= 2 {
		b.Adjacency = raise(b.Adjacency, playStep)
		b.Pairs = raise(b.Pairs, playStep)
	}
	if combo.Size >= 3 {
		b.Triples = raise(b.Triples, playStep)
	}
	for k := 1; k <= combo.Size; k++ {
		b.CanRespond[k] = raise(b.Respond(k), respondStep)
	}
	for _, c := range combo.Cards {
		delete(b.Known, c.ID)
	}
	b.HandSize = handSize
	b.clampRanges()
}

func (b *Belief) observeDraw(tableSize, tableValue, handSize int) {
	b.Draws++
	b.Adjacency = clamp01(b.Adjacency * drawDecay)
	if tableSize > 0 {
		b.CanRespond[tableSize] = clamp01(b.Respond(tableSize) * refuseDecay)
	}
	if tableSize == 1 {
		for v := tableValue + 1; v <= domain.MaxCardValue; v++ {
			if b.Ranges[v].Max > b.Ranges[v].Min {
				b.Ranges[v].Max--
			}
		}
	}
	b.HandSize = handSize
	b.clampRanges()
}

func (b *Belief) observeCaptureInsert(card domain.Card, firstOfPile bool, handSize int) {
	if firstOfPile {
		b.PilesTaken++
		b.Adjacency = raise(b.Adjacency, captureStep)
	}
	b.Known[card.ID] = card.Plain()
	b.HandSize = handSize
	b.clampRanges()
}

func (b *Belief) clampRanges() {
	var known [domain.MaxCardValue + 1]int
	for _, c := range b.Known {
		if !c.IsSplit() {
			known[c.Value]++
		}
	}
	for v := domain.MinCardValue; v <= domain.MaxCardValue; v++ {
		r := b.Ranges[v]
		r.Min = known[v]
		if r.Max > b.HandSize {
			r.Max = b.HandSize
		}
		if r.Min > b.HandSize {
			r.Min = b.HandSize
		}
		if r.Max < r.Min {
			r.Max = r.Min
		}
		b.Ranges[v] = r
	}
}

func raise(p, step float64) float64 {
	return clamp01(p + (1-p)*step)
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Tracker owns the beliefs about every opponent in one room.
type Tracker struct {
	handSize  int
	beliefs   map[string]*Belief
	capturing map[string]bool
}

// NewTracker creates a tracker for games dealt with handSize cards.
func NewTracker(handSize int) *Tracker {
	return &Tracker{
		handSize:  handSize,
		beliefs:   make(map[string]*Belief),
		capturing: make(map[string]bool),
	}
}

// Reset forgets everything, keeping the deal size.
func (t *Tracker) Reset() {
	t.beliefs = make(map[string]*Belief)
	t.capturing = make(map[string]bool)
}

// Belief returns the belief for playerID, creating it on first sighting.
func (t *Tracker) Belief(playerID string) *Belief {
	b, ok := t.beliefs[playerID]
	if !ok {
		b = newBelief(playerID, t.handSize)
		t.beliefs[playerID] = b
	}
	return b
}

// Lookup returns the belief for playerID without creating one.
func (t *Tracker) Lookup(playerID string) (*Belief, bool) {
	b, ok := t.beliefs[playerID]
	return b, ok
}

// ObservePlay records a combo played by playerID. beatenSize is the size of
// the table combo it replaced, zero when the table was empty.
func (t *Tracker) ObservePlay(playerID string, combo domain.Combo, beatenSize, handSize int) {
	t.Belief(playerID).observePlay(combo, beatenSize > 0, handSize)
	if beatenSize > 0 {
		t.capturing[playerID] = true
	}
}

// ObserveDraw records that playerID drew instead of playing.
func (t *Tracker) ObserveDraw(playerID string, tableSize, tableValue, handSize int) {
	t.Belief(playerID).observeDraw(tableSize, tableValue, handSize)
}

// ObserveCaptureInsert records a captured card kept by playerID.
func (t *Tracker) ObserveCaptureInsert(playerID string, card domain.Card, handSize int) {
	first := t.capturing[playerID]
	delete(t.capturing, playerID)
	t.Belief(playerID).observeCaptureInsert(card, first, handSize)
}

// ObserveCaptureDiscard records that playerID threw the capture away.
func (t *Tracker) ObserveCaptureDiscard(playerID string, handSize int) {
	delete(t.capturing, playerID)
	t.ObserveHandSize(playerID, handSize)
}

// ObserveHandSize updates the hand size ceiling.
func (t *Tracker) ObserveHandSize(playerID string, handSize int) {
	b := t.Belief(playerID)
	b.HandSize = handSize
	b.clampRanges()
}
