package postgres

import (
	"database/sql"
	"time"

	"github.com/mapl11/fantasy-cricket/internal/domain/performance"
)

type performanceTableModel struct {
	ID              int64     `db:"id"`
	PublicID        string    `db:"public_id"`
	TeamPublicID    string    `db:"team_public_id"`
	MatchID         string    `db:"match_id"`
	TeamTotalPoints int       `db:"team_total_points"`
	Rank            int       `db:"rank"`
	BonusAwarded    int       `db:"bonus_awarded"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type memberPerformanceTableModel struct {
	ID                  int64          `db:"id"`
	PerformancePublicID string         `db:"performance_public_id"`
	UserID              string         `db:"user_public_id"`
	FantasyTeamID       sql.NullString `db:"fantasy_team_public_id"`
	FantasyPoints       int            `db:"fantasy_points"`
	PredictionPoints    int            `db:"prediction_points"`
	TotalPoints         int            `db:"total_points"`
	BonusPoints         int            `db:"bonus_points"`
}

func (m performanceTableModel) toDomain(members []performance.MemberPerformance) performance.Performance {
	return performance.Performance{
		ID:                 m.PublicID,
		TeamID:             m.TeamPublicID,
		MatchID:            m.MatchID,
		MemberPerformances: members,
		TeamTotalPoints:    m.TeamTotalPoints,
		Rank:               m.Rank,
		BonusAwarded:       m.BonusAwarded,
		Status:             performance.Status(m.Status),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (m memberPerformanceTableModel) toDomain() performance.MemberPerformance {
	return performance.MemberPerformance{
		UserID:           m.UserID,
		FantasyTeamID:    m.FantasyTeamID.String,
		FantasyPoints:    m.FantasyPoints,
		PredictionPoints: m.PredictionPoints,
		TotalPoints:      m.TotalPoints,
		BonusPoints:      m.BonusPoints,
	}
}
