package performance

import "context"

// Repository describes performance ledger persistence needs from use cases.
type Repository interface {
	GetByTeamAndMatch(ctx context.Context, teamID, matchID string) (Performance, bool, error)
	// Create inserts a new record; the (team, match) pair must be unique.
	Create(ctx context.Context, perf Performance) error
	// Update overwrites the record's mutable fields (members, totals, rank,
	// bonus, status) in full.
	Update(ctx context.Context, perf Performance) error
	// ListByMatchStatuses returns the match's records currently in any of the
	// given states, ordered by creation.
	ListByMatchStatuses(ctx context.Context, matchID string, statuses ...Status) ([]Performance, error)
	// ListCompletedByTeam pages a team's completed match history, newest first.
	ListCompletedByTeam(ctx context.Context, teamID string, offset, limit int) ([]Performance, int, error)
}
