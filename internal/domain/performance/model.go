package performance

import (
	"fmt"
	"time"
)

// Status is the per-record scoring state machine. Records move strictly
// pending -> active -> completed; bonus award only ever fires on active
// records, which is what makes a scoring rerun a no-op.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// MemberPerformance is one member's share of a team's match ledger.
type MemberPerformance struct {
	UserID           string
	FantasyTeamID    string
	FantasyPoints    int
	PredictionPoints int
	TotalPoints      int
	BonusPoints      int
}

// Performance is the per-team-per-match ledger. Unique per (TeamID, MatchID);
// MemberPerformances snapshot team membership at registration time.
type Performance struct {
	ID                 string
	TeamID             string
	MatchID            string
	MemberPerformances []MemberPerformance
	TeamTotalPoints    int
	// Rank is assigned by the rank-based policy only; 0 otherwise.
	Rank         int
	BonusAwarded int
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Performance) MemberUserIDs() []string {
	ids := make([]string, 0, len(p.MemberPerformances))
	for _, m := range p.MemberPerformances {
		ids = append(ids, m.UserID)
	}

	return ids
}

func (p Performance) Validate() error {
	if p.TeamID == "" {
		return fmt.Errorf("performance team id is required")
	}
	if p.MatchID == "" {
		return fmt.Errorf("performance match id is required")
	}
	switch p.Status {
	case StatusPending, StatusActive, StatusCompleted:
	default:
		return fmt.Errorf("performance status %q is invalid", p.Status)
	}
	if len(p.MemberPerformances) == 0 {
		return fmt.Errorf("performance requires member snapshot")
	}

	return nil
}
