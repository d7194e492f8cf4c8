package postgres

import (
	"time"

	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
)

type teamTableModel struct {
	ID            int64     `db:"id"`
	PublicID      string    `db:"public_id"`
	Name          string    `db:"name"`
	TotalPoints   int       `db:"total_points"`
	MatchesPlayed int       `db:"matches_played"`
	Wins          int       `db:"wins"`
	Podiums       int       `db:"podiums"`
	TopFives      int       `db:"top_fives"`
	BestRank      int       `db:"best_rank"`
	AverageRank   float64   `db:"average_rank"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type teamMemberTableModel struct {
	ID           int64     `db:"id"`
	TeamPublicID string    `db:"team_public_id"`
	UserID       string    `db:"user_public_id"`
	DisplayName  string    `db:"display_name"`
	Avatar       string    `db:"avatar"`
	JoinedAt     time.Time `db:"joined_at"`
	Role         string    `db:"role"`
}

func (m teamTableModel) toDomain(members []permanentteam.Member) permanentteam.Team {
	return permanentteam.Team{
		ID:      m.PublicID,
		Name:    m.Name,
		Members: members,
		Stats: permanentteam.Stats{
			TotalPoints:   m.TotalPoints,
			MatchesPlayed: m.MatchesPlayed,
			Wins:          m.Wins,
			Podiums:       m.Podiums,
			TopFives:      m.TopFives,
			BestRank:      m.BestRank,
			AverageRank:   m.AverageRank,
		},
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (m teamMemberTableModel) toDomain() permanentteam.Member {
	return permanentteam.Member{
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Avatar:      m.Avatar,
		JoinedAt:    m.JoinedAt,
		Role:        permanentteam.Role(m.Role),
	}
}
