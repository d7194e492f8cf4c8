package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mapl11/fantasy-cricket/internal/domain/queue"
)

type QueueRepository struct {
	db *sqlx.DB
}

func NewQueueRepository(db *sqlx.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

const queueColumns = `
id, public_id, user_public_id, joined_at, status, assigned_team_public_id,
created_at, updated_at`

func (r *QueueRepository) GetByUser(ctx context.Context, userID string) (queue.Entry, bool, error) {
	query := `
SELECT` + queueColumns + `
FROM formation_queue
WHERE user_public_id = $1`

	var row queueEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return queue.Entry{}, false, nil
		}
		return queue.Entry{}, false, fmt.Errorf("get queue entry: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *QueueRepository) ListWaiting(ctx context.Context) ([]queue.Entry, error) {
	query := `
SELECT` + queueColumns + `
FROM formation_queue
WHERE status = $1
ORDER BY joined_at, id`

	var rows []queueEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, string(queue.StatusWaiting)); err != nil {
		return nil, fmt.Errorf("list waiting queue entries: %w", err)
	}

	out := make([]queue.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *QueueRepository) CountWaiting(ctx context.Context) (int, error) {
	const query = `
SELECT COUNT(*)
FROM formation_queue
WHERE status = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, string(queue.StatusWaiting)); err != nil {
		return 0, fmt.Errorf("count waiting queue entries: %w", err)
	}

	return count, nil
}

func (r *QueueRepository) Create(ctx context.Context, entry queue.Entry) error {
	const query = `
INSERT INTO formation_queue (public_id, user_public_id, joined_at, status, assigned_team_public_id)
VALUES (:public_id, :user_public_id, :joined_at, :status, :assigned_team_public_id)`

	args := map[string]any{
		"public_id":               entry.ID,
		"user_public_id":          entry.UserID,
		"joined_at":               entry.JoinedAt,
		"status":                  string(entry.Status),
		"assigned_team_public_id": nullableString(entry.AssignedTeamID),
	}
	bound, boundArgs, err := sqlx.Named(query, args)
	if err != nil {
		return fmt.Errorf("bind create queue entry query: %w", err)
	}
	bound = r.db.Rebind(bound)

	if _, err := r.db.ExecContext(ctx, bound, boundArgs...); err != nil {
		return fmt.Errorf("create queue entry: %w", err)
	}

	return nil
}

func (r *QueueRepository) DeleteWaiting(ctx context.Context, userID string) (bool, error) {
	const query = `
DELETE FROM formation_queue
WHERE user_public_id = $1
  AND status = $2`

	result, err := r.db.ExecContext(ctx, query, userID, string(queue.StatusWaiting))
	if err != nil {
		return false, fmt.Errorf("delete waiting queue entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted queue entries: %w", err)
	}

	return affected > 0, nil
}
