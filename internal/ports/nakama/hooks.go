package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"ringo/internal/app/onboarding"
	"ringo/internal/ports"
)

// accountAdapter implements ports.AccountPort using Nakama's account API.
type accountAdapter struct {
	nk runtime.NakamaModule
}

// UpdateProfile updates the account username and display name in Nakama.
func (a accountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return a.nk.AccountUpdateId(ctx, userID, username, nil, displayName, "", "", "", "")
}

var _ ports.AccountPort = accountAdapter{}

// AfterAuthenticateDevice gives new accounts a generated profile.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created {
		return nil
	}

	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		resolvedID, err := extractUserIDFromToken(out.Token)
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
			return err
		}
		userID = resolvedID
	}

	logger.Info("Onboarding new user %s", userID)

	service := onboarding.NewService(accountAdapter{nk: nk}, nil)
	displayName, err := service.OnboardNewUser(ctx, userID)
	if err != nil {
		logger.Error("AfterAuthenticateDevice: Onboarding failed for user %s: %v", userID, err)
		return err
	}
	logger.Debug("AfterAuthenticateDevice: User %s is now %s", userID, displayName)
	return nil
}

// extractUserIDFromToken reads the uid claim of a session token. The token was
// just minted by Nakama, so the signature is not checked.
func extractUserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", errors.New("token claims missing uid")
	}
	return uid, nil
}
