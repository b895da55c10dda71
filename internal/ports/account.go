package ports

import "context"

// AccountPort is the outbound port for writing player profiles.
type AccountPort interface {
	// UpdateProfile sets the username and display name of userID.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
