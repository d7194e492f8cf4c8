package postgres

import (
	"database/sql"
	"time"

	"github.com/mapl11/fantasy-cricket/internal/domain/user"
)

type userTableModel struct {
	ID                 int64          `db:"id"`
	PublicID           string         `db:"public_id"`
	DisplayName        string         `db:"display_name"`
	Avatar             string         `db:"avatar"`
	PermanentTeamID    sql.NullString `db:"permanent_team_public_id"`
	TotalFantasyPoints int            `db:"total_fantasy_points"`
	TeamBonusPoints    int            `db:"team_bonus_points"`
	TeamMatchesPlayed  int            `db:"team_matches_played"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:              m.PublicID,
		DisplayName:     m.DisplayName,
		Avatar:          m.Avatar,
		PermanentTeamID: m.PermanentTeamID.String,
		Stats: user.Stats{
			TotalFantasyPoints: m.TotalFantasyPoints,
		},
		TeamStats: user.TeamStats{
			BonusPointsEarned: m.TeamBonusPoints,
			MatchesPlayed:     m.TeamMatchesPlayed,
		},
	}
}
