package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"ringo/internal/app"
	"ringo/internal/config"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	// Ticket must be passed as join metadata when seat tickets are enabled.
	Ticket string `json:"ticket,omitempty"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

// quickMatchQuery lists ringo lobbies with at least one open seat.
func quickMatchQuery() string {
	return fmt.Sprintf("+label.game:%s +label.phase:lobby +label.%s:>=1", MatchLabelGame, MatchLabelKey_OpenSeats)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	tickets := ticketService(env, config.Get())

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := app.MaxPlayers - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery())
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", err
	}

	resp := QuickMatchResponse{}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
		logger.Info("rpcQuickMatch [User:%s]: Found existing match %s", userID, resp.MatchID)
	} else {
		// Seat and owner assignment happen in MatchJoin.
		matchID, err := nk.MatchCreate(ctx, MatchNameRingo, map[string]interface{}{})
		if err != nil {
			logger.Error("rpcQuickMatch [User:%s]: MatchCreate error: %v", userID, err)
			return "", err
		}
		resp.MatchID = matchID
		resp.IsNew = true
		logger.Info("rpcQuickMatch [User:%s]: Created new match %s", userID, matchID)
	}

	if tickets.Enabled() {
		ticket, err := tickets.Issue(userID, resp.MatchID)
		if err != nil {
			logger.Error("rpcQuickMatch [User:%s]: Failed to issue ticket: %v", userID, err)
			return "", err
		}
		resp.Ticket = ticket
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
