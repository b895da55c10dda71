package bot

import (
	"fmt"
	"strings"

	"ringo/internal/config"
)

// BotLevel selects the brain a bot seat plays with.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelNightmare
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelEasy:
		return "easy"
	case BotLevelNightmare:
		return "nightmare"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a difficulty name to a level. An empty name is nightmare.
func ParseLevel(name string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "easy":
		return BotLevelEasy, nil
	case "", "nightmare":
		return BotLevelNightmare, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, cfg config.BotConfig) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return EasyBot{}, nil
	case BotLevelNightmare:
		return NewNightmareBot(TuningFromConfig(cfg), SimulatorFromConfig(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
