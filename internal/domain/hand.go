package domain

// RemovePositions returns a new hand without the cards at the sorted positions.
func RemovePositions(hand []Card, positions []int) []Card {
	out := make([]Card, 0, len(hand))
	next := 0
	for i, c := range hand {
		if next < len(positions) && positions[next] == i {
			next++
			continue
		}
		out = append(out, c)
	}
	return out
}

// InsertCard returns a new hand with card placed at pos.
func InsertCard(hand []Card, pos int, card Card) []Card {
	if pos < 0 {
		pos = 0
	}
	if pos > len(hand) {
		pos = len(hand)
	}
	out := make([]Card, 0, len(hand)+1)
	out = append(out, hand[:pos]...)
	out = append(out, card)
	return append(out, hand[pos:]...)
}

// IndexOfCard returns the index of the card with the given id, or -1.
func IndexOfCard(cards []Card, id int) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// PlainCards strips resolution annotations.
func PlainCards(cards []Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = c.Plain()
	}
	return out
}

// CloneCards copies a card slice; nil stays nil.
func CloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	return append(make([]Card, 0, len(cards)), cards...)
}
