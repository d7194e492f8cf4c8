package user

import "context"

// Repository describes user persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	GetByIDs(ctx context.Context, userIDs []string) ([]User, error)
	// SetPermanentTeam stamps the team reference on every listed user.
	SetPermanentTeam(ctx context.Context, userIDs []string, teamID string) error
	// ApplyTeamBonus adds a bonus to the user's cumulative counters and bumps
	// the team-match play counter.
	ApplyTeamBonus(ctx context.Context, userID string, bonus int) error
}
