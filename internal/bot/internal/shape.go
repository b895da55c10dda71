package internal

import (
	"ringo/internal/domain"
)

const (
	BlockerWeight = 3
	EdgePenalty   = 1
	FlexBonus     = 2
	MaxSwapPasses = 5
	minGroupSize  = 2
)

// Group is a maximal run of adjacent cards sharing a common value.
type Group struct {
	Start int
	End   int // inclusive
	Value int
}

// Size is the number of cards in the group.
func (g Group) Size() int {
	return g.End - g.Start + 1
}

// Groups scans the hand left to right and returns every greedy maximal run of
// at least two cards that resolve to a common value.
func Groups(hand []domain.Card) []Group {
	var groups []Group
	for i := 0; i < len(hand); {
		j := i
		value := hand[i].MaxValue()
		for j+1 < len(hand) {
			v := domain.CommonValue(hand[i : j+2])
			if v == 0 {
				break
			}
			value = v
			j++
		}
		if j-i+1 >= minGroupSize {
			groups = append(groups, Group{Start: i, End: j, Value: value})
			i = j + 1
			continue
		}
		i++
	}
	return groups
}

func groupIndex(hand []domain.Card, groups []Group) []int {
	idx := make([]int, len(hand))
	for i := range idx {
		idx[i] = -1
	}
	for g, grp := range groups {
		for i := grp.Start; i <= grp.End; i++ {
			idx[i] = g
		}
	}
	return idx
}

// HandCost scores a hand's shape; lower is better.
//
//	cost = blockers - groups - flex + edge
//
// groups is the sum of squared group sizes. blockers is BlockerWeight times
// the gaps between consecutive same-value cards outside a shared group. edge
// adds EdgePenalty for each end of the hand holding an ungrouped high card.
// flex adds FlexBonus for each split card next to a group it could join.
func HandCost(hand []domain.Card) int {
	if len(hand) == 0 {
		return 0
	}
	groups := Groups(hand)
	owner := groupIndex(hand, groups)

	score := 0
	for _, g := range groups {
		score += g.Size() * g.Size()
	}

	gaps := 0
	var last [domain.MaxCardValue + 1]int
	for i := range last {
		last[i] = -1
	}
	for i, c := range hand {
		if c.IsSplit() {
			continue
		}
		if prev := last[c.Value]; prev >= 0 {
			if owner[prev] < 0 || owner[prev] != owner[i] {
				gaps += i - prev - 1
			}
		}
		last[c.Value] = i
	}

	edge := 0
	ends := []int{0}
	if len(hand) > 1 {
		ends = append(ends, len(hand)-1)
	}
	for _, i := range ends {
		if owner[i] < 0 && hand[i].MaxValue() >= domain.HighCardValue {
			edge += EdgePenalty
		}
	}

	flex := 0
	for i, c := range hand {
		if !c.IsSplit() {
			continue
		}
		for _, g := range groups {
			if g.Start <= i && i <= g.End {
				continue
			}
			if (g.End == i-1 || g.Start == i+1) && c.CanBe(g.Value) {
				flex += FlexBonus
				break
			}
		}
	}

	return BlockerWeight*gaps - score - flex + edge
}

// Fragmentation counts, over every standard value, how many extra separate
// blocks of the hand hold that value.
func Fragmentation(hand []domain.Card) int {
	owner := groupIndex(hand, Groups(hand))
	var blocks [domain.MaxCardValue + 1]int
	lastBlock := make(map[int]int)
	for i, c := range hand {
		if c.IsSplit() {
			continue
		}
		block := -1 - i
		if owner[i] >= 0 {
			block = owner[i]
		}
		if prev, ok := lastBlock[c.Value]; ok && prev == block {
			continue
		}
		lastBlock[c.Value] = block
		blocks[c.Value]++
	}
	n := 0
	for _, b := range blocks {
		if b > 1 {
			n += b - 1
		}
	}
	return n
}

// Insertion places the card with CardID at Position of the hand as it is when
// the step is applied.
type Insertion struct {
	CardID   int
	Position int
}

// Placement is the result of an insertion search.
type Placement struct {
	Hand  []domain.Card
	Cost  int
	Steps []Insertion
}

// BestInsertion returns the position minimizing the hand cost after inserting
// card, and that cost. Ties keep the leftmost position.
func BestInsertion(hand []domain.Card, card domain.Card) (int, int) {
	bestPos, bestCost := 0, 0
	for pos := 0; pos <= len(hand); pos++ {
		cost := HandCost(domain.InsertCard(hand, pos, card))
		if pos == 0 || cost < bestCost {
			bestPos, bestCost = pos, cost
		}
	}
	return bestPos, bestCost
}

// FindOptimalInsertion inserts cards one at a time at their locally best
// position, then swaps pairs of inserted cards while a swap strictly lowers
// the cost, for at most MaxSwapPasses passes.
func FindOptimalInsertion(hand []domain.Card, cards []domain.Card) Placement {
	cur := domain.CloneCards(hand)
	if cur == nil {
		cur = []domain.Card{}
	}
	inserted := make(map[int]bool, len(cards))
	for _, c := range cards {
		pos, _ := BestInsertion(cur, c)
		cur = domain.InsertCard(cur, pos, c)
		inserted[c.ID] = true
	}
	cost := HandCost(cur)

	var slots []int
	for i, c := range cur {
		if inserted[c.ID] {
			slots = append(slots, i)
		}
	}

	for pass := 0; pass < MaxSwapPasses; pass++ {
		bestA, bestB, bestCost := -1, -1, cost
		for a := 0; a < len(slots); a++ {
			for b := a + 1; b < len(slots); b++ {
				i, j := slots[a], slots[b]
				cur[i], cur[j] = cur[j], cur[i]
				if c := HandCost(cur); c < bestCost {
					bestA, bestB, bestCost = i, j, c
				}
				cur[i], cur[j] = cur[j], cur[i]
			}
		}
		if bestA < 0 {
			break
		}
		cur[bestA], cur[bestB] = cur[bestB], cur[bestA]
		cost = bestCost
	}

	steps := make([]Insertion, 0, len(slots))
	for _, i := range slots {
		steps = append(steps, Insertion{CardID: cur[i].ID, Position: i})
	}
	return Placement{Hand: cur, Cost: cost, Steps: steps}
}
