package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"ringo/internal/bot"
	"ringo/internal/config"
)

const (
	defaultConfigPath     = "/nakama/data/modules/ringo.yaml"
	defaultIdentitiesPath = "/nakama/data/modules/bot_identities.json"
)

// InitModule loads configuration and bot identities, then wires RPCs, hooks
// and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	configPath := defaultConfigPath
	if p, ok := env["ringo_config_path"]; ok && p != "" {
		configPath = p
	}
	if err := config.LoadConfig(configPath); err != nil {
		logger.Warn("InitModule: Using default config: %v", err)
	}

	identitiesPath := defaultIdentitiesPath
	if p, ok := env["ringo_bot_identities_path"]; ok && p != "" {
		identitiesPath = p
	}
	if err := bot.LoadIdentities(identitiesPath); err != nil {
		logger.Warn("InitModule: No bot identities loaded, bots use generated names: %v", err)
	} else {
		bot.DefaultRoster().Provision(ctx, nk, logger)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameRingo, NewMatch); err != nil {
		return err
	}

	logger.Info("Ringo Go module loaded.")
	return nil
}
