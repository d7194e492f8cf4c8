package postgres

import (
	"database/sql"
	"time"

	"github.com/mapl11/fantasy-cricket/internal/domain/queue"
)

type queueEntryTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	UserID         string         `db:"user_public_id"`
	JoinedAt       time.Time      `db:"joined_at"`
	Status         string         `db:"status"`
	AssignedTeamID sql.NullString `db:"assigned_team_public_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (m queueEntryTableModel) toDomain() queue.Entry {
	return queue.Entry{
		ID:             m.PublicID,
		UserID:         m.UserID,
		JoinedAt:       m.JoinedAt,
		Status:         queue.Status(m.Status),
		AssignedTeamID: m.AssignedTeamID.String,
	}
}
