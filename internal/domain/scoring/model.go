package scoring

import "fmt"

// Policy selects how match bonuses are resolved.
type Policy string

const (
	// PolicyFixture resolves a fixed bracket of head-to-head team pairings.
	PolicyFixture Policy = "fixture"
	// PolicyRank orders all participating teams by match total and pays
	// tiered bonuses by rank.
	PolicyRank Policy = "rank"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case PolicyFixture:
		return PolicyFixture, nil
	case PolicyRank:
		return PolicyRank, nil
	default:
		return "", fmt.Errorf("unknown scoring policy %q", raw)
	}
}

// FixturePair is one head-to-head pairing of team display names in the
// static bracket.
type FixturePair struct {
	HomeTeamName string
	AwayTeamName string
}

// DefaultBracket mirrors the seeded seven-pairing bracket the tournament
// launched with. Overridable through configuration.
func DefaultBracket() []FixturePair {
	return []FixturePair{
		{HomeTeamName: "Team 1", AwayTeamName: "Team 14"},
		{HomeTeamName: "Team 2", AwayTeamName: "Team 13"},
		{HomeTeamName: "Team 3", AwayTeamName: "Team 12"},
		{HomeTeamName: "Team 4", AwayTeamName: "Team 11"},
		{HomeTeamName: "Team 5", AwayTeamName: "Team 10"},
		{HomeTeamName: "Team 6", AwayTeamName: "Team 9"},
		{HomeTeamName: "Team 7", AwayTeamName: "Team 8"},
	}
}

// RankBonusTiers are the rank-based policy payouts.
type RankBonusTiers struct {
	First  int
	Second int
	Third  int
	// TopFive pays ranks four and five, only when at least
	// MinTeamsForTopFive teams scored in the match.
	TopFive int
}

const MinTeamsForTopFive = 5

func DefaultRankBonusTiers() RankBonusTiers {
	return RankBonusTiers{First: 100, Second: 75, Third: 50, TopFive: 25}
}

// BonusFor returns the payout for a 1-based rank among teamCount teams.
func (t RankBonusTiers) BonusFor(rank, teamCount int) int {
	switch {
	case rank == 1:
		return t.First
	case rank == 2:
		return t.Second
	case rank == 3:
		return t.Third
	case rank <= 5 && teamCount >= MinTeamsForTopFive:
		return t.TopFive
	default:
		return 0
	}
}
