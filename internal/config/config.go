package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"ringo/internal/domain"
)

// MatchConfig controls room behaviour in the Nakama match handler.
type MatchConfig struct {
	MaxSeats                int    `yaml:"max_seats"`
	TickRate                int    `yaml:"tick_rate"`
	BotsEnabled             bool   `yaml:"bots_enabled"`
	BotMinDelaySeconds      int    `yaml:"bot_min_delay_seconds"`
	BotMaxDelaySeconds      int    `yaml:"bot_max_delay_seconds"`
	BotAutoFillDelaySeconds int    `yaml:"bot_auto_fill_delay_seconds"`
	BotDifficulty           string `yaml:"bot_difficulty"`
	TicketIssuer            string `yaml:"ticket_issuer"`
	TicketTTLSeconds        int    `yaml:"ticket_ttl_seconds"`
}

// BotConfig tunes the decision policy and rollout simulator.
type BotConfig struct {
	Samples           int     `yaml:"samples"`
	Horizon           int     `yaml:"horizon"`
	Workers           int     `yaml:"workers"`
	WinWeight         float64 `yaml:"win_weight"`
	TurnsWeight       float64 `yaml:"turns_weight"`
	OppWinWeight      float64 `yaml:"opp_win_weight"`
	FinisherWeight    float64 `yaml:"finisher_weight"`
	DrawMargin        float64 `yaml:"draw_margin"`
	EmergencyHandSize int     `yaml:"emergency_hand_size"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Deck  domain.DeckSpec `yaml:"deck"`
	Match MatchConfig     `yaml:"match"`
	Bot   BotConfig       `yaml:"bot"`
}

var (
	cfg      *Config
	loadOnce sync.Once
	loadErr  error
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Deck: domain.DefaultDeckSpec,
		Match: MatchConfig{
			MaxSeats:                5,
			TickRate:                1,
			BotsEnabled:             true,
			BotMinDelaySeconds:      1,
			BotMaxDelaySeconds:      3,
			BotAutoFillDelaySeconds: 5,
			BotDifficulty:           "nightmare",
			TicketIssuer:            "ringo",
			TicketTTLSeconds:        600,
		},
		Bot: BotConfig{
			Samples:           32,
			Horizon:           6,
			WinWeight:         120,
			TurnsWeight:       8,
			OppWinWeight:      150,
			FinisherWeight:    100,
			DrawMargin:        20,
			EmergencyHandSize: 2,
		},
	}
}

// Parse decodes YAML on top of the defaults. Missing or zero fields keep their
// default values.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Deck.HandSize == 0 {
		c.Deck = d.Deck
	}
	if c.Match.MaxSeats == 0 {
		c.Match.MaxSeats = d.Match.MaxSeats
	}
	if c.Match.TickRate == 0 {
		c.Match.TickRate = d.Match.TickRate
	}
	if c.Match.BotMinDelaySeconds == 0 {
		c.Match.BotMinDelaySeconds = d.Match.BotMinDelaySeconds
	}
	if c.Match.BotMaxDelaySeconds == 0 {
		c.Match.BotMaxDelaySeconds = d.Match.BotMaxDelaySeconds
	}
	if c.Match.BotAutoFillDelaySeconds == 0 {
		c.Match.BotAutoFillDelaySeconds = d.Match.BotAutoFillDelaySeconds
	}
	if c.Match.BotDifficulty == "" {
		c.Match.BotDifficulty = d.Match.BotDifficulty
	}
	if c.Match.TicketIssuer == "" {
		c.Match.TicketIssuer = d.Match.TicketIssuer
	}
	if c.Match.TicketTTLSeconds == 0 {
		c.Match.TicketTTLSeconds = d.Match.TicketTTLSeconds
	}
	if c.Bot.Samples == 0 {
		c.Bot.Samples = d.Bot.Samples
	}
	if c.Bot.Horizon == 0 {
		c.Bot.Horizon = d.Bot.Horizon
	}
	if c.Bot.WinWeight == 0 {
		c.Bot.WinWeight = d.Bot.WinWeight
	}
	if c.Bot.TurnsWeight == 0 {
		c.Bot.TurnsWeight = d.Bot.TurnsWeight
	}
	if c.Bot.OppWinWeight == 0 {
		c.Bot.OppWinWeight = d.Bot.OppWinWeight
	}
	if c.Bot.FinisherWeight == 0 {
		c.Bot.FinisherWeight = d.Bot.FinisherWeight
	}
	if c.Bot.DrawMargin == 0 {
		c.Bot.DrawMargin = d.Bot.DrawMargin
	}
	if c.Bot.EmergencyHandSize == 0 {
		c.Bot.EmergencyHandSize = d.Bot.EmergencyHandSize
	}
}

// Validate rejects configurations the game cannot run with.
func (c Config) Validate() error {
	if c.Match.MaxSeats < 2 || c.Match.MaxSeats > 5 {
		return fmt.Errorf("max_seats must be between 2 and 5, got %d", c.Match.MaxSeats)
	}
	if c.Match.BotMinDelaySeconds > c.Match.BotMaxDelaySeconds {
		return fmt.Errorf("bot_min_delay_seconds (%d) exceeds bot_max_delay_seconds (%d)", c.Match.BotMinDelaySeconds, c.Match.BotMaxDelaySeconds)
	}
	deckSize := len(domain.NewDeck(c.Deck))
	if c.Deck.HandSize*c.Match.MaxSeats >= deckSize {
		return fmt.Errorf("deck of %d cards cannot deal %d cards to %d seats", deckSize, c.Deck.HandSize, c.Match.MaxSeats)
	}
	return nil
}

// LoadConfig loads the configuration from the given path once.
func LoadConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read config: %w", err)
			return
		}
		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// Get returns the loaded configuration, or the defaults when none was loaded.
func Get() Config {
	if cfg == nil {
		return Default()
	}
	return *cfg
}
