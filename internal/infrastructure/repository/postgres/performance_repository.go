package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mapl11/fantasy-cricket/internal/domain/performance"
)

type PerformanceRepository struct {
	db *sqlx.DB
}

func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

const performanceColumns = `
id, public_id, team_public_id, match_id, team_total_points, rank,
bonus_awarded, status, created_at, updated_at`

const memberPerformanceColumns = `
id, performance_public_id, user_public_id, fantasy_team_public_id,
fantasy_points, prediction_points, total_points, bonus_points`

func (r *PerformanceRepository) GetByTeamAndMatch(ctx context.Context, teamID, matchID string) (performance.Performance, bool, error) {
	query := `
SELECT` + performanceColumns + `
FROM team_match_performances
WHERE team_public_id = $1
  AND match_id = $2`

	var row performanceTableModel
	if err := r.db.GetContext(ctx, &row, query, teamID, matchID); err != nil {
		if isNotFound(err) {
			return performance.Performance{}, false, nil
		}
		return performance.Performance{}, false, fmt.Errorf("get performance: %w", err)
	}

	members, err := r.membersFor(ctx, []string{row.PublicID})
	if err != nil {
		return performance.Performance{}, false, err
	}

	return row.toDomain(members[row.PublicID]), true, nil
}

func (r *PerformanceRepository) Create(ctx context.Context, perf performance.Performance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for performance create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertQuery = `
INSERT INTO team_match_performances (
    public_id, team_public_id, match_id, team_total_points, rank,
    bonus_awarded, status, created_at, updated_at
) VALUES (
    :public_id, :team_public_id, :match_id, :team_total_points, :rank,
    :bonus_awarded, :status, :created_at, :updated_at
)`

	headSQL, headArgs, err := sqlx.Named(insertQuery, map[string]any{
		"public_id":         perf.ID,
		"team_public_id":    perf.TeamID,
		"match_id":          perf.MatchID,
		"team_total_points": perf.TeamTotalPoints,
		"rank":              perf.Rank,
		"bonus_awarded":     perf.BonusAwarded,
		"status":            string(perf.Status),
		"created_at":        perf.CreatedAt,
		"updated_at":        perf.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("bind insert performance query: %w", err)
	}
	headSQL = tx.Rebind(headSQL)
	if _, err := tx.ExecContext(ctx, headSQL, headArgs...); err != nil {
		return fmt.Errorf("insert performance: %w", err)
	}

	if err := insertMemberRows(ctx, tx, perf); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit performance create tx: %w", err)
	}

	return nil
}

func (r *PerformanceRepository) Update(ctx context.Context, perf performance.Performance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for performance update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const updateQuery = `
UPDATE team_match_performances
SET team_total_points = :team_total_points,
    rank = :rank,
    bonus_awarded = :bonus_awarded,
    status = :status,
    updated_at = :updated_at
WHERE public_id = :public_id`

	headSQL, headArgs, err := sqlx.Named(updateQuery, map[string]any{
		"public_id":         perf.ID,
		"team_total_points": perf.TeamTotalPoints,
		"rank":              perf.Rank,
		"bonus_awarded":     perf.BonusAwarded,
		"status":            string(perf.Status),
		"updated_at":        perf.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("bind update performance query: %w", err)
	}
	headSQL = tx.Rebind(headSQL)

	result, err := tx.ExecContext(ctx, headSQL, headArgs...)
	if err != nil {
		return fmt.Errorf("update performance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("count updated performances: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("performance %s not found", perf.ID)
	}

	const clearQuery = `
DELETE FROM team_match_member_performances
WHERE performance_public_id = $1`
	if _, err := tx.ExecContext(ctx, clearQuery, perf.ID); err != nil {
		return fmt.Errorf("clear member performances: %w", err)
	}

	if err := insertMemberRows(ctx, tx, perf); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit performance update tx: %w", err)
	}

	return nil
}

func (r *PerformanceRepository) ListByMatchStatuses(ctx context.Context, matchID string, statuses ...performance.Status) ([]performance.Performance, error) {
	if len(statuses) == 0 {
		return []performance.Performance{}, nil
	}

	statusValues := make([]string, 0, len(statuses))
	for _, status := range statuses {
		statusValues = append(statusValues, string(status))
	}

	query := `
SELECT` + performanceColumns + `
FROM team_match_performances
WHERE match_id = ?
  AND status IN (?)
ORDER BY id`

	bound, args, err := sqlx.In(query, matchID, statusValues)
	if err != nil {
		return nil, fmt.Errorf("bind list performances query: %w", err)
	}
	bound = r.db.Rebind(bound)

	var rows []performanceTableModel
	if err := r.db.SelectContext(ctx, &rows, bound, args...); err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}

	return r.attachMembers(ctx, rows)
}

func (r *PerformanceRepository) ListCompletedByTeam(ctx context.Context, teamID string, offset, limit int) ([]performance.Performance, int, error) {
	const countQuery = `
SELECT COUNT(*)
FROM team_match_performances
WHERE team_public_id = $1
  AND status = $2`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, teamID, string(performance.StatusCompleted)); err != nil {
		return nil, 0, fmt.Errorf("count completed performances: %w", err)
	}

	query := `
SELECT` + performanceColumns + `
FROM team_match_performances
WHERE team_public_id = $1
  AND status = $2
ORDER BY updated_at DESC, id DESC
LIMIT $3 OFFSET $4`

	var rows []performanceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, teamID, string(performance.StatusCompleted), limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list completed performances: %w", err)
	}

	perfs, err := r.attachMembers(ctx, rows)
	if err != nil {
		return nil, 0, err
	}

	return perfs, total, nil
}

func (r *PerformanceRepository) attachMembers(ctx context.Context, rows []performanceTableModel) ([]performance.Performance, error) {
	perfIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		perfIDs = append(perfIDs, row.PublicID)
	}
	members, err := r.membersFor(ctx, perfIDs)
	if err != nil {
		return nil, err
	}

	out := make([]performance.Performance, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(members[row.PublicID]))
	}

	return out, nil
}

func (r *PerformanceRepository) membersFor(ctx context.Context, perfIDs []string) (map[string][]performance.MemberPerformance, error) {
	if len(perfIDs) == 0 {
		return map[string][]performance.MemberPerformance{}, nil
	}

	query := `
SELECT` + memberPerformanceColumns + `
FROM team_match_member_performances
WHERE performance_public_id IN (?)
ORDER BY id`

	bound, args, err := sqlx.In(query, perfIDs)
	if err != nil {
		return nil, fmt.Errorf("bind list member performances query: %w", err)
	}
	bound = r.db.Rebind(bound)

	var rows []memberPerformanceTableModel
	if err := r.db.SelectContext(ctx, &rows, bound, args...); err != nil {
		return nil, fmt.Errorf("list member performances: %w", err)
	}

	out := make(map[string][]performance.MemberPerformance, len(perfIDs))
	for _, row := range rows {
		out[row.PerformancePublicID] = append(out[row.PerformancePublicID], row.toDomain())
	}

	return out, nil
}

func insertMemberRows(ctx context.Context, tx *sqlx.Tx, perf performance.Performance) error {
	const query = `
INSERT INTO team_match_member_performances (
    performance_public_id, user_public_id, fantasy_team_public_id,
    fantasy_points, prediction_points, total_points, bonus_points
) VALUES (
    :performance_public_id, :user_public_id, :fantasy_team_public_id,
    :fantasy_points, :prediction_points, :total_points, :bonus_points
)`

	for _, member := range perf.MemberPerformances {
		memberSQL, memberArgs, err := sqlx.Named(query, map[string]any{
			"performance_public_id":  perf.ID,
			"user_public_id":         member.UserID,
			"fantasy_team_public_id": nullableString(member.FantasyTeamID),
			"fantasy_points":         member.FantasyPoints,
			"prediction_points":      member.PredictionPoints,
			"total_points":           member.TotalPoints,
			"bonus_points":           member.BonusPoints,
		})
		if err != nil {
			return fmt.Errorf("bind insert member performance user=%s query: %w", member.UserID, err)
		}
		memberSQL = tx.Rebind(memberSQL)
		if _, err := tx.ExecContext(ctx, memberSQL, memberArgs...); err != nil {
			return fmt.Errorf("insert member performance user=%s: %w", member.UserID, err)
		}
	}

	return nil
}
