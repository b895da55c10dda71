package domain

import "fmt"

const (
	MinCardValue = 1
	MaxCardValue = 8
	// HighCardValue is the lowest value treated as a high card by hand heuristics.
	HighCardValue = 7
)

// CardKind discriminates the card variants.
type CardKind uint8

const (
	// CardStandard carries a single fixed value.
	CardStandard CardKind = iota
	// CardSplit may resolve to either of two adjacent values.
	CardSplit
)

func (k CardKind) String() string {
	switch k {
	case CardStandard:
		return "standard"
	case CardSplit:
		return "split"
	default:
		return fmt.Sprintf("CardKind(%d)", uint8(k))
	}
}

// Card is a single card. Value is the base value; for split cards Alt is the
// second candidate. Resolved is zero until the card is played in a combo.
type Card struct {
	ID       int
	Kind     CardKind
	Value    int
	Alt      int
	Resolved int
}

// NewStandardCard returns a fixed-value card.
func NewStandardCard(id, value int) Card {
	return Card{ID: id, Kind: CardStandard, Value: value}
}

// NewSplitCard returns a card that resolves to low or high.
func NewSplitCard(id, low, high int) Card {
	if high < low {
		low, high = high, low
	}
	return Card{ID: id, Kind: CardSplit, Value: low, Alt: high}
}

// IsSplit reports whether the card has two candidate values.
func (c Card) IsSplit() bool {
	return c.Kind == CardSplit
}

// Candidates returns the values the card can stand for.
func (c Card) Candidates() []int {
	switch c.Kind {
	case CardSplit:
		return []int{c.Value, c.Alt}
	default:
		return []int{c.Value}
	}
}

// CanBe reports whether v is one of the card's candidate values.
func (c Card) CanBe(v int) bool {
	switch c.Kind {
	case CardSplit:
		return v == c.Value || v == c.Alt
	default:
		return v == c.Value
	}
}

// MaxValue is the highest candidate value.
func (c Card) MaxValue() int {
	if c.Kind == CardSplit {
		return c.Alt
	}
	return c.Value
}

// Resolve returns a copy of the card annotated with the chosen value.
func (c Card) Resolve(v int) Card {
	c.Resolved = v
	return c
}

// Plain returns the card without its resolution annotation.
func (c Card) Plain() Card {
	c.Resolved = 0
	return c
}

// EffectiveValue is the resolved value when set, otherwise the base value.
func (c Card) EffectiveValue() int {
	if c.Resolved != 0 {
		return c.Resolved
	}
	return c.Value
}

func (c Card) String() string {
	switch c.Kind {
	case CardSplit:
		if c.Resolved != 0 {
			return fmt.Sprintf("%d/%d=%d#%d", c.Value, c.Alt, c.Resolved, c.ID)
		}
		return fmt.Sprintf("%d/%d#%d", c.Value, c.Alt, c.ID)
	default:
		return fmt.Sprintf("%d#%d", c.Value, c.ID)
	}
}
