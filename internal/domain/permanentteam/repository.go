package permanentteam

import "context"

// ListFilter narrows and pages team listings. Results are ordered by
// cumulative total points descending.
type ListFilter struct {
	Search string
	Offset int
	Limit  int
}

// Repository describes permanent team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	GetByIDs(ctx context.Context, teamIDs []string) ([]Team, error)
	ListActive(ctx context.Context) ([]Team, error)
	// List returns a page of active teams plus the total count for the filter.
	List(ctx context.Context, filter ListFilter) ([]Team, int, error)
	// NameInUse reports whether an active team other than excludeTeamID
	// already uses the trimmed name.
	NameInUse(ctx context.Context, name, excludeTeamID string) (bool, error)
	UpdateName(ctx context.Context, teamID, name string) error
	ApplyMatchOutcome(ctx context.Context, teamID string, outcome MatchOutcome) error
}

// FormationStore creates a formed team atomically: the team record, the
// matched flag on the consumed queue entries, and the team reference on each
// member's user record either all land or none do.
type FormationStore interface {
	CreateFormedTeam(ctx context.Context, team Team) error
}
