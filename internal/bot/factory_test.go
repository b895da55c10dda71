package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringo/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    BotLevel
		wantErr bool
	}{
		{in: "easy", want: BotLevelEasy},
		{in: " Nightmare ", want: BotLevelNightmare},
		{in: "", want: BotLevelNightmare},
		{in: "god", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewBrain(t *testing.T) {
	cfg := config.Default().Bot

	b, err := NewBrain(BotLevelEasy, cfg)
	require.NoError(t, err)
	assert.IsType(t, EasyBot{}, b)

	b, err = NewBrain(BotLevelNightmare, cfg)
	require.NoError(t, err)
	nm, ok := b.(*NightmareBot)
	require.True(t, ok)
	assert.Equal(t, cfg.Samples, nm.Simulator.Samples)
	assert.Equal(t, cfg.Horizon, nm.Simulator.Horizon)
	assert.Equal(t, 120.0, nm.Tuning.WinWeight)
	assert.Equal(t, 20.0, nm.Tuning.DrawMargin)
	assert.Len(t, nm.Rules, len(DefaultBonusRules))

	_, err = NewBrain(BotLevel(9), cfg)
	assert.Error(t, err)
}

func TestRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bots.json")
	data := `[
		{"user_id": "u1", "username": "ada", "display_name": "Ada", "difficulty": "easy"},
		{"device_id": "dev-2", "username": "bob", "difficulty": "nightmare"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	r, err := ReadRoster(path)
	require.NoError(t, err)
	assert.True(t, r.IsBot("u1"))
	assert.False(t, r.IsBot("dev-2"), "unprovisioned bots are not indexed")
	assert.Equal(t, "Ada", r.DisplayName("u1"))
	assert.Equal(t, "", r.DisplayName("nobody"))
	assert.Equal(t, "bob", r.Pick(3).Username)

	level, err := r.Pick(0).Level()
	require.NoError(t, err)
	assert.Equal(t, BotLevelEasy, level)

	_, err = ReadRoster(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRoster_EmptyPoolIsSynthetic(t *testing.T) {
	id := NewRoster(nil).Pick(2)
	assert.Equal(t, "bot-2", id.UserID)
	assert.Equal(t, "Bot 3", id.DisplayName)
	level, err := id.Level()
	require.NoError(t, err)
	assert.Equal(t, BotLevelNightmare, level)
}
