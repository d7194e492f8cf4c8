package permanentteam

import (
	"fmt"
	"strings"
	"time"
)

// Role of a member inside a permanent team. The first-queued member leads.
type Role string

const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

const (
	NameMinLength = 2
	NameMaxLength = 30
)

// Member is one of the fixed TEAM_SIZE users of a permanent team.
type Member struct {
	UserID      string
	DisplayName string
	Avatar      string
	JoinedAt    time.Time
	Role        Role
}

// Stats are the team's cumulative counters across the tournament.
// BestRank and AverageRank are zero until the team has been ranked
// at least once (rank-based policy only).
type Stats struct {
	TotalPoints   int
	MatchesPlayed int
	Wins          int
	Podiums       int
	TopFives      int
	BestRank      int
	AverageRank   float64
}

// Team is a fixed group formed once via the queue, persisting across matches.
type Team struct {
	ID        string
	Name      string
	Members   []Member
	Stats     Stats
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchOutcome is the per-match delta applied to a team's cumulative stats
// after bonus resolution.
type MatchOutcome struct {
	PointsDelta int
	Win         bool
	// Rank is the team's position for the match; 0 when the active policy
	// does not rank teams.
	Rank int
}

func (t Team) Leader() (Member, bool) {
	for _, m := range t.Members {
		if m.Role == RoleLeader {
			return m, true
		}
	}

	return Member{}, false
}

func (t Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}

	return false
}

func (t Team) MemberUserIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}

	return ids
}

func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < NameMinLength || len(trimmed) > NameMaxLength {
		return fmt.Errorf("team name must be between %d and %d characters", NameMinLength, NameMaxLength)
	}

	return nil
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if len(t.Members) == 0 {
		return fmt.Errorf("team requires members")
	}

	leaders := 0
	seen := make(map[string]struct{}, len(t.Members))
	for _, m := range t.Members {
		if m.UserID == "" {
			return fmt.Errorf("team member user id is required")
		}
		if _, dup := seen[m.UserID]; dup {
			return fmt.Errorf("duplicate team member %s", m.UserID)
		}
		seen[m.UserID] = struct{}{}
		if m.Role == RoleLeader {
			leaders++
		}
	}
	if leaders != 1 {
		return fmt.Errorf("team requires exactly one leader, has %d", leaders)
	}

	return nil
}
