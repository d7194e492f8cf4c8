package scoring

import "context"

// FantasyEntry is a member's independently scored fantasy squad for a match.
type FantasyEntry struct {
	FantasyTeamID string
	Points        int
}

// Source exposes the external per-user-per-match scores the team engine
// consumes as opaque inputs. Missing entries score zero.
type Source interface {
	FantasyEntry(ctx context.Context, userID, matchID string) (FantasyEntry, bool, error)
	PredictionPoints(ctx context.Context, userID, matchID string) (int, bool, error)
	// UsersWithFantasyEntry lists every user holding a fantasy entry for the
	// match; drives the team auto-registration sweep.
	UsersWithFantasyEntry(ctx context.Context, matchID string) ([]string, error)
}
