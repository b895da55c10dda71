package brain

import (
	"fmt"
	"math/rand"

	"ringo/internal/domain"
)

// SampleWorld deals a plausible guess of every hidden hand. Cards whose
// location botID can see stay put: the discard pile, the table, a pending
// capture, the bot's own hand and drawn card, and the hands of players listed
// in visible. The remaining cards are dealt to the other players guided by
// tracker, and the rest become the draw pile. The same rng seed always
// yields the same world.
func SampleWorld(rng *rand.Rand, state *domain.GameState, botID string, tracker *Tracker, visible map[string]bool) (*domain.GameState, error) {
	world := state.Clone()

	known := make(map[int]bool, len(state.Deck))
	mark := func(cards []domain.Card) {
		for _, c := range cards {
			known[c.ID] = true
		}
	}
	mark(world.DiscardPile)
	if world.Table != nil {
		mark(world.Table.Cards)
	}
	if world.Pending != nil {
		mark(world.Pending.Cards)
	}
	if world.InFlight != nil {
		if world.InFlight.Owner == botID || visible[world.InFlight.Owner] {
			known[world.InFlight.Card.ID] = true
		} else {
			world.InFlight = nil
		}
	}
	hidden := make([]int, 0, len(world.Players))
	for i, p := range world.Players {
		if p.ID == botID || visible[p.ID] {
			mark(p.Hand)
			continue
		}
		hidden = append(hidden, i)
	}

	d := &dealer{rng: rng, pool: make([]domain.Card, 0, len(state.Deck))}
	for _, c := range state.Deck {
		if !known[c.ID] {
			d.pool = append(d.pool, c.Plain())
		}
	}
	rng.Shuffle(len(d.pool), func(i, j int) { d.pool[i], d.pool[j] = d.pool[j], d.pool[i] })

	for _, seat := range hidden {
		p := &world.Players[seat]
		size := len(p.Hand)

		var belief *Belief
		if tracker != nil {
			belief, _ = tracker.Lookup(p.ID)
		}
		hand := make([]domain.Card, 0, size)
		if belief != nil {
			hand = d.guided(belief, size)
		}
		for len(hand) < size {
			if len(d.pool) == 0 {
				return nil, &domain.InconsistencyError{Op: "sample world", Detail: fmt.Sprintf("pool exhausted dealing %s", p.ID)}
			}
			hand = append(hand, d.pool[0])
			d.pool = d.pool[1:]
		}
		rng.Shuffle(len(hand), func(i, j int) { hand[i], hand[j] = hand[j], hand[i] })
		if belief != nil && rng.Float64() < excess(belief.Adjacency, neutral) {
			hand = groupValues(hand)
		}
		p.Hand = hand
	}

	world.DrawPile = d.pool
	if err := domain.CheckConservation(world); err != nil {
		return nil, err
	}
	return world, nil
}

// dealer hands out cards from the unseen pool.
type dealer struct {
	rng  *rand.Rand
	pool []domain.Card
}

func (d *dealer) take(match func(domain.Card) bool) (domain.Card, bool) {
	for i, c := range d.pool {
		if match(c) {
			d.pool = append(d.pool[:i], d.pool[i+1:]...)
			return c, true
		}
	}
	return domain.Card{}, false
}

func (d *dealer) unseen(v int) int {
	return countValue(d.pool, v)
}

// guided deals the part of a hand the belief has an opinion on: known
// captures first, then a count per value drawn around its hypergeometric
// mean. Evidence of pairs and triples stretches single cards into groups.
// At least reserveSlots(size) slots are left for the unguided fill.
func (d *dealer) guided(b *Belief, size int) []domain.Card {
	hand := make([]domain.Card, 0, size)
	for _, k := range b.KnownCards() {
		if len(hand) == size {
			break
		}
		if c, ok := d.take(func(c domain.Card) bool { return c.ID == k.ID }); ok {
			hand = append(hand, c)
		}
	}

	total := len(d.pool)
	budget := size - reserveSlots(size)
	if total == 0 || len(hand) >= budget {
		return hand
	}
	pairBias := excess(b.Pairs, neutral)
	tripleBias := excess(b.Triples, neutral/2)
	for _, v := range d.rng.Perm(domain.MaxCardValue) {
		if len(hand) >= budget {
			break
		}
		v += domain.MinCardValue
		mean := float64(size*d.unseen(v)) / float64(total)
		n := int(mean)
		if d.rng.Float64() < mean-float64(n) {
			n++
		}
		if n == 1 && d.rng.Float64() < pairBias {
			n = 2
		}
		if n == 2 && d.rng.Float64() < tripleBias {
			n = 3
		}
		for n = b.Ranges[v].Clamp(n) - countValue(hand, v); n > 0 && len(hand) < budget; n-- {
			c, ok := d.take(func(c domain.Card) bool { return !c.IsSplit() && c.Value == v })
			if !ok {
				break
			}
			hand = append(hand, c)
		}
	}
	return hand
}

// reserveSlots is how many cards of a hand are always dealt blind.
func reserveSlots(size int) int {
	return max(1, size/4)
}

// excess maps p above base onto [0, 1]; anything at or below base is zero.
func excess(p, base float64) float64 {
	if p <= base {
		return 0
	}
	return clamp01((p - base) / (1 - base))
}

// groupValues reorders hand so standard cards of one value sit together, in
// order of first appearance. Split cards keep their own slot.
func groupValues(hand []domain.Card) []domain.Card {
	out := make([]domain.Card, 0, len(hand))
	placed := make([]bool, len(hand))
	for i, c := range hand {
		if placed[i] {
			continue
		}
		out = append(out, c)
		placed[i] = true
		if c.IsSplit() {
			continue
		}
		for j := i + 1; j < len(hand); j++ {
			if !placed[j] && !hand[j].IsSplit() && hand[j].Value == c.Value {
				out = append(out, hand[j])
				placed[j] = true
			}
		}
	}
	return out
}

func countValue(hand []domain.Card, v int) int {
	n := 0
	for _, c := range hand {
		if !c.IsSplit() && c.Value == v {
			n++
		}
	}
	return n
}
