package user

import "fmt"

// Principal is the authenticated caller identity resolved from a bearer token.
type Principal struct {
	UserID      string
	DisplayName string
}

// User is the slice of the account record the team engine reads and writes.
type User struct {
	ID              string
	DisplayName     string
	Avatar          string
	PermanentTeamID string
	Stats           Stats
	TeamStats       TeamStats
}

// Stats holds individually earned cumulative points.
type Stats struct {
	TotalFantasyPoints int
}

// TeamStats holds cumulative counters earned through the permanent team.
type TeamStats struct {
	BonusPointsEarned int
	MatchesPlayed     int
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}

	return nil
}
