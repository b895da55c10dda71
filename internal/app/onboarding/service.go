package onboarding

import (
	"context"
	"fmt"
	"math/rand"

	"ringo/internal/app"
	"ringo/internal/ports"
)

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service. accounts must be non-nil; rng
// may be nil to use a randomly seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = app.NewRand()
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser gives a newly created account a friendly display name so it
// shows up at the table with something other than its device id.
// Returns the chosen name.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.accounts == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	name := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, "", name); err != nil {
		return "", fmt.Errorf("failed to set display name: %w", err)
	}
	return name, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Lucky", "Sly", "Bold", "Quiet", "Swift", "Calm", "Sharp", "Wild", "Steady", "Cheeky"}
	nouns := []string{"Dealer", "Shuffler", "Splitter", "Stacker", "Runner", "Gambler", "Joker", "Drawer", "Closer", "Ringer"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
