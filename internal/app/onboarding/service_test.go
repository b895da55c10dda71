package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

type fakeAccountPort struct {
	updateErr   error
	userID      string
	displayName string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.userID = userID
	f.displayName = displayName
	return f.updateErr
}

func TestOnboardNewUser_SetsDisplayName(t *testing.T) {
	accounts := &fakeAccountPort{}
	service := NewService(accounts, rand.New(rand.NewSource(1)))

	name, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if accounts.userID != "user-1" {
		t.Fatalf("Expected update for user-1, got %q", accounts.userID)
	}
	if accounts.displayName != name {
		t.Fatalf("Expected display name %q, got %q", name, accounts.displayName)
	}
	if !regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{4}$`).MatchString(name) {
		t.Fatalf("Unexpected name format %q", name)
	}
}

func TestOnboardNewUser_AccountUpdateFailure(t *testing.T) {
	accounts := &fakeAccountPort{updateErr: errors.New("update failed")}
	service := NewService(accounts, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when profile update fails")
	}
}

func TestOnboardNewUser_RequiresPorts(t *testing.T) {
	service := NewService(nil, nil)
	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when account port is missing")
	}
}

func TestOnboardNewUser_DeterministicWithSeed(t *testing.T) {
	a, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7))).OnboardNewUser(context.Background(), "u")
	b, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7))).OnboardNewUser(context.Background(), "u")
	if a != b {
		t.Fatalf("Expected same name for same seed, got %q and %q", a, b)
	}
}
