package domain

// PublicPlayer is what any viewer may know about a seat.
type PublicPlayer struct {
	ID        string
	Name      string
	HandCount int
}

// PublicState is a GameState projected for one viewer.
type PublicState struct {
	ID           string
	Status       Status
	Phase        TurnPhase
	Players      []PublicPlayer
	CurrentID    string
	Hand         []Card
	Table        *TableCombo
	Pending      []Card // only for the capture owner
	PendingOwner string
	Drawn        *Card // only for the drawer
	DrawnOwner   string
	DrawCount    int
	DiscardCount int
	Winner       string
	Turn         int
}

// Project builds the PublicState of s for viewerID.
func Project(s *GameState, viewerID string) PublicState {
	view := PublicState{
		ID:           s.ID,
		Status:       s.Status,
		Phase:        s.Phase,
		Players:      make([]PublicPlayer, len(s.Players)),
		DrawCount:    len(s.DrawPile),
		DiscardCount: len(s.DiscardPile),
		Winner:       s.Winner,
		Turn:         s.Turn,
	}
	for i, p := range s.Players {
		view.Players[i] = PublicPlayer{ID: p.ID, Name: p.Name, HandCount: len(p.Hand)}
		if p.ID == viewerID {
			view.Hand = CloneCards(p.Hand)
		}
	}
	if cur := s.CurrentPlayer(); cur != nil {
		view.CurrentID = cur.ID
	}
	if s.Table != nil {
		t := *s.Table
		t.Combo = cloneCombo(s.Table.Combo)
		// Positions index the owner's hand, whose order is private.
		t.Combo.Positions = nil
		view.Table = &t
	}
	if s.Pending != nil {
		view.PendingOwner = s.Pending.Owner
		if s.Pending.Owner == viewerID {
			view.Pending = CloneCards(s.Pending.Cards)
		}
	}
	if s.InFlight != nil {
		view.DrawnOwner = s.InFlight.Owner
		if s.InFlight.Owner == viewerID {
			c := s.InFlight.Card
			view.Drawn = &c
		}
	}
	return view
}
