package main

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringo/internal/bot"
	"ringo/internal/config"
)

func TestPlayGame_EasyBotsFinish(t *testing.T) {
	cfg := config.Default()
	plan := []seatPlan{{ID: "a", Level: bot.BotLevelEasy}, {ID: "b", Level: bot.BotLevelEasy}, {ID: "c", Level: bot.BotLevelEasy}}

	for seed := int64(1); seed <= 3; seed++ {
		out, err := playGame(context.Background(), cfg, plan, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		assert.True(t, out.Finished, "seed %d did not finish in %d steps", seed, out.Steps)
		if !out.Stalled {
			assert.Contains(t, []string{"a", "b", "c"}, out.Winner)
		}
	}
}

func TestSummarize(t *testing.T) {
	plan := []seatPlan{{ID: "a", Level: bot.BotLevelNightmare}, {ID: "b", Level: bot.BotLevelEasy}}
	outcomes := []gameOutcome{
		{Winner: "a", Finished: true, Turns: 10},
		{Winner: "a", Finished: true, Turns: 20},
		{Finished: true, Stalled: true, Turns: 30},
		{Turns: 40},
	}

	data := summarize(plan, outcomes)
	require.Len(t, data, 6)
	assert.Equal(t, []string{"a", "nightmare", "2", "50.0%"}, data[1])
	assert.Equal(t, []string{"b", "easy", "0", "0.0%"}, data[2])
	assert.Equal(t, "1", data[3][2])
	assert.Equal(t, "1", data[4][2])
	assert.Equal(t, "25.0", data[5][2])
}
