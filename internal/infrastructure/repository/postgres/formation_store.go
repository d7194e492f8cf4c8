package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
	"github.com/mapl11/fantasy-cricket/internal/domain/queue"
)

// FormationStore lands a formed team in one transaction: team row, member
// rows, matched queue entries, and the team stamp on each user row.
type FormationStore struct {
	db *sqlx.DB
}

func NewFormationStore(db *sqlx.DB) *FormationStore {
	return &FormationStore{db: db}
}

func (s *FormationStore) CreateFormedTeam(ctx context.Context, team permanentteam.Team) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for team formation: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertTeamQuery = `
INSERT INTO permanent_teams (public_id, name, is_active, created_at, updated_at)
VALUES (:public_id, :name, :is_active, :created_at, :updated_at)`

	teamSQL, teamArgs, err := sqlx.Named(insertTeamQuery, map[string]any{
		"public_id":  team.ID,
		"name":       team.Name,
		"is_active":  team.IsActive,
		"created_at": team.CreatedAt,
		"updated_at": team.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("bind insert team query: %w", err)
	}
	teamSQL = tx.Rebind(teamSQL)
	if _, err := tx.ExecContext(ctx, teamSQL, teamArgs...); err != nil {
		return fmt.Errorf("insert team: %w", err)
	}

	const insertMemberQuery = `
INSERT INTO permanent_team_members (team_public_id, user_public_id, display_name, avatar, joined_at, role)
VALUES (:team_public_id, :user_public_id, :display_name, :avatar, :joined_at, :role)`

	for _, member := range team.Members {
		memberSQL, memberArgs, err := sqlx.Named(insertMemberQuery, map[string]any{
			"team_public_id": team.ID,
			"user_public_id": member.UserID,
			"display_name":   member.DisplayName,
			"avatar":         member.Avatar,
			"joined_at":      member.JoinedAt,
			"role":           string(member.Role),
		})
		if err != nil {
			return fmt.Errorf("bind insert team member user=%s query: %w", member.UserID, err)
		}
		memberSQL = tx.Rebind(memberSQL)
		if _, err := tx.ExecContext(ctx, memberSQL, memberArgs...); err != nil {
			return fmt.Errorf("insert team member user=%s: %w", member.UserID, err)
		}
	}

	memberIDs := team.MemberUserIDs()

	const matchQueueQuery = `
UPDATE formation_queue
SET status = ?,
    assigned_team_public_id = ?,
    updated_at = NOW()
WHERE user_public_id IN (?)
  AND status = ?`

	queueSQL, queueArgs, err := sqlx.In(matchQueueQuery,
		string(queue.StatusMatched), team.ID, memberIDs, string(queue.StatusWaiting))
	if err != nil {
		return fmt.Errorf("bind match queue entries query: %w", err)
	}
	queueSQL = tx.Rebind(queueSQL)

	result, err := tx.ExecContext(ctx, queueSQL, queueArgs...)
	if err != nil {
		return fmt.Errorf("match queue entries: %w", err)
	}
	matched, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("count matched queue entries: %w", err)
	}
	if int(matched) != len(memberIDs) {
		return fmt.Errorf("queue entries changed during formation: matched %d of %d", matched, len(memberIDs))
	}

	const stampUsersQuery = `
UPDATE users
SET permanent_team_public_id = ?,
    updated_at = NOW()
WHERE public_id IN (?)`

	userSQL, userArgs, err := sqlx.In(stampUsersQuery, team.ID, memberIDs)
	if err != nil {
		return fmt.Errorf("bind stamp users query: %w", err)
	}
	userSQL = tx.Rebind(userSQL)
	if _, err := tx.ExecContext(ctx, userSQL, userArgs...); err != nil {
		return fmt.Errorf("stamp users with team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit team formation tx: %w", err)
	}

	return nil
}
