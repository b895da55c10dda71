package domain

import (
	"fmt"
	"math/bits"
	"sort"
)

// Combo is a resolved play: contiguous hand positions, the common value and
// the split resolutions used (card id -> value).
type Combo struct {
	Positions   []int
	Cards       []Card
	Value       int
	Size        int
	Resolutions map[int]int
}

// Start is the first hand position of the combo.
func (c Combo) Start() int {
	if len(c.Positions) == 0 {
		return -1
	}
	return c.Positions[0]
}

// End is the last hand position of the combo.
func (c Combo) End() int {
	if len(c.Positions) == 0 {
		return -1
	}
	return c.Positions[len(c.Positions)-1]
}

func (c Combo) String() string {
	return fmt.Sprintf("%dx%d%v", c.Size, c.Value, c.Positions)
}

// TableCombo is the combo currently on the table and who played it.
type TableCombo struct {
	Combo
	Owner string
}

// RescueOption is a beating combo reachable by inserting a drawn card.
// Combo.Positions are in the coordinates of the hand after insertion;
// HandPositions are the original hand cards used.
type RescueOption struct {
	InsertPosition int
	HandPositions  []int
	Combo          Combo
}

const allValues uint16 = ((1 << (MaxCardValue + 1)) - 1) &^ 1

func valueMask(c Card) uint16 {
	switch c.Kind {
	case CardSplit:
		return 1<<uint(c.Value) | 1<<uint(c.Alt)
	default:
		return 1 << uint(c.Value)
	}
}

func highestValue(mask uint16) int {
	if mask == 0 {
		return 0
	}
	return bits.Len16(mask) - 1
}

// CommonValue returns the highest value every card can resolve to, or zero.
func CommonValue(cards []Card) int {
	mask := allValues
	for _, c := range cards {
		mask &= valueMask(c)
		if mask == 0 {
			return 0
		}
	}
	return highestValue(mask)
}

// ValidateAdjacentCards checks that positions are non-empty, in bounds and
// consecutive, and returns them sorted.
func ValidateAdjacentCards(hand []Card, positions []int) ([]int, error) {
	if len(positions) == 0 {
		return nil, ErrEmptySelection
	}
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	for i, p := range sorted {
		if p < 0 || p >= len(hand) {
			return nil, fmt.Errorf("%w: %d", ErrOutOfBounds, p)
		}
		if i == 0 {
			continue
		}
		if p == sorted[i-1] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, p)
		}
		if p != sorted[i-1]+1 {
			return nil, ErrNotAdjacent
		}
	}
	return sorted, nil
}

// ResolveCombo validates the selection and resolves it to the highest value
// all selected cards share. resolutions forces split cards (by card id).
func ResolveCombo(hand []Card, positions []int, resolutions map[int]int) (Combo, error) {
	sorted, err := ValidateAdjacentCards(hand, positions)
	if err != nil {
		return Combo{}, err
	}
	cards := make([]Card, len(sorted))
	for i, p := range sorted {
		cards[i] = hand[p]
	}
	return resolveCards(sorted, cards, resolutions)
}

func resolveCards(positions []int, cards []Card, resolutions map[int]int) (Combo, error) {
	mask := allValues
	for _, c := range cards {
		m := valueMask(c)
		if forced, ok := resolutions[c.ID]; ok && c.IsSplit() {
			if !c.CanBe(forced) {
				return Combo{}, fmt.Errorf("%w: card %d cannot be %d", ErrInvalidResolution, c.ID, forced)
			}
			m = 1 << uint(forced)
		}
		mask &= m
	}
	if mask == 0 {
		return Combo{}, ErrNoCommonValue
	}
	return pinCombo(positions, cards, highestValue(mask))
}

// pinCombo fixes every card of the combo to value.
func pinCombo(positions []int, cards []Card, value int) (Combo, error) {
	combo := Combo{
		Positions: positions,
		Cards:     make([]Card, len(cards)),
		Value:     value,
		Size:      len(cards),
	}
	for i, c := range cards {
		if !c.CanBe(value) {
			return Combo{}, &InconsistencyError{
				Op:     "resolve combo",
				Detail: fmt.Sprintf("card %v cannot be pinned to %d", c, value),
			}
		}
		if c.IsSplit() {
			if combo.Resolutions == nil {
				combo.Resolutions = make(map[int]int)
			}
			combo.Resolutions[c.ID] = value
		}
		combo.Cards[i] = c.Resolve(value)
	}
	return combo, nil
}

// Beats reports whether a combo of the given size and value beats current.
func Beats(current *Combo, size, value int) bool {
	if current == nil {
		return true
	}
	if size != current.Size {
		return size > current.Size
	}
	return value > current.Value
}

// ValidateBeat reports whether candidate may replace current on the table.
func ValidateBeat(current *Combo, candidate Combo) bool {
	return Beats(current, candidate.Size, candidate.Value)
}

// FindValidCombos enumerates every contiguous range of the hand that resolves
// and beats current, ordered by start position then size.
func FindValidCombos(hand []Card, current *Combo) []Combo {
	var out []Combo
	for start := range hand {
		mask := allValues
		for end := start; end < len(hand); end++ {
			mask &= valueMask(hand[end])
			if mask == 0 {
				break
			}
			size := end - start + 1
			value := highestValue(mask)
			if !Beats(current, size, value) {
				continue
			}
			positions := make([]int, size)
			for i := range positions {
				positions[i] = start + i
			}
			combo, err := pinCombo(positions, hand[start:end+1], value)
			if err != nil {
				continue
			}
			out = append(out, combo)
		}
	}
	return out
}

// CheckInsertionPossibility lists every beating combo that becomes available
// when drawn is inserted into hand. Each option uses the drawn card.
func CheckInsertionPossibility(hand []Card, drawn Card, current *Combo) []RescueOption {
	var out []RescueOption
	for pos := 0; pos <= len(hand); pos++ {
		virtual := InsertCard(hand, pos, drawn)
		left := valueMask(drawn)
		for start := pos; start >= 0; start-- {
			if start < pos {
				left &= valueMask(virtual[start])
			}
			if left == 0 {
				break
			}
			mask := left
			for end := pos; end < len(virtual); end++ {
				if end > pos {
					mask &= valueMask(virtual[end])
				}
				if mask == 0 {
					break
				}
				size := end - start + 1
				value := highestValue(mask)
				if !Beats(current, size, value) {
					continue
				}
				positions := make([]int, size)
				handPositions := make([]int, 0, size-1)
				for i := range positions {
					vp := start + i
					positions[i] = vp
					switch {
					case vp < pos:
						handPositions = append(handPositions, vp)
					case vp > pos:
						handPositions = append(handPositions, vp-1)
					}
				}
				combo, err := pinCombo(positions, virtual[start:end+1], value)
				if err != nil {
					continue
				}
				out = append(out, RescueOption{
					InsertPosition: pos,
					HandPositions:  handPositions,
					Combo:          combo,
				})
			}
		}
	}
	return out
}
