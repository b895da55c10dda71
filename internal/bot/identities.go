package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is one bot profile from the identities file.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy" or "nightmare"
	AvatarIndex int    `json:"avatar_index"`
}

// Level returns the brain level for the identity's difficulty.
func (id BotIdentity) Level() (BotLevel, error) {
	return ParseLevel(id.Difficulty)
}

// Roster is the pool of bot identities available to matches.
type Roster struct {
	mu         sync.RWMutex
	identities []BotIdentity
	byUserID   map[string]BotIdentity
}

// NewRoster creates a roster over identities. Entries without a user id are
// indexed once they are provisioned.
func NewRoster(identities []BotIdentity) *Roster {
	r := &Roster{identities: identities, byUserID: make(map[string]BotIdentity)}
	for _, id := range identities {
		if id.UserID != "" {
			r.byUserID[id.UserID] = id
		}
	}
	return r
}

// ReadRoster loads a roster from a JSON file.
func ReadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	return NewRoster(identities), nil
}

// Provision ensures that every bot with a device id has a Nakama account
// flagged with is_bot metadata.
func (r *Roster) Provision(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.identities {
		identity := &r.identities[i]
		if identity.DeviceID == "" {
			continue
		}

		userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
		if err != nil {
			logger.Error("Provision: failed to authenticate bot %s: %v", identity.Username, err)
			continue
		}
		identity.UserID = userID
		identity.Username = username

		metadata := map[string]interface{}{
			"is_bot":       true,
			"difficulty":   identity.Difficulty,
			"avatar_index": identity.AvatarIndex,
		}
		if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
			logger.Warn("Provision: failed to update bot account %s: %v", userID, err)
		}

		r.byUserID[userID] = *identity
		logger.Info("Provision: bot %s (%s) is ready, difficulty %s", identity.DisplayName, userID, identity.Difficulty)
	}
}

// Lookup returns the identity of a bot user.
func (r *Roster) Lookup(userID string) (BotIdentity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUserID[userID]
	return id, ok
}

// IsBot reports whether the given user ID belongs to the bot pool.
func (r *Roster) IsBot(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Pick returns an identity by index (mod pool size). An empty roster yields
// synthetic identities.
func (r *Roster) Pick(index int) BotIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.identities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			Username:    fmt.Sprintf("bot%d", index),
			DisplayName: fmt.Sprintf("Bot %d", index+1),
			Difficulty:  BotLevelNightmare.String(),
		}
	}
	return r.identities[index%len(r.identities)]
}

// DisplayName returns the display name of a bot, falling back to its
// username; empty when userID is not a bot.
func (r *Roster) DisplayName(userID string) string {
	id, ok := r.Lookup(userID)
	if !ok {
		return ""
	}
	if id.DisplayName != "" {
		return id.DisplayName
	}
	return id.Username
}

var (
	defaultRoster = NewRoster(nil)
	loadOnce      sync.Once
	loadErr       error
)

// LoadIdentities loads the process roster from path once.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		r, err := ReadRoster(path)
		if err != nil {
			loadErr = err
			return
		}
		defaultRoster = r
	})
	return loadErr
}

// DefaultRoster returns the roster loaded by LoadIdentities, or an empty one.
func DefaultRoster() *Roster {
	return defaultRoster
}
