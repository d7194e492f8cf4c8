package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `
id, public_id, name, total_points, matches_played, wins, podiums, top_fives,
best_rank, average_rank, is_active, created_at, updated_at`

const teamMemberColumns = `
id, team_public_id, user_public_id, display_name, avatar, joined_at, role`

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (permanentteam.Team, bool, error) {
	query := `
SELECT` + teamColumns + `
FROM permanent_teams
WHERE public_id = $1`

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, teamID); err != nil {
		if isNotFound(err) {
			return permanentteam.Team{}, false, nil
		}
		return permanentteam.Team{}, false, fmt.Errorf("get team: %w", err)
	}

	members, err := r.membersFor(ctx, []string{teamID})
	if err != nil {
		return permanentteam.Team{}, false, err
	}

	return row.toDomain(members[teamID]), true, nil
}

func (r *TeamRepository) GetByIDs(ctx context.Context, teamIDs []string) ([]permanentteam.Team, error) {
	if len(teamIDs) == 0 {
		return []permanentteam.Team{}, nil
	}

	query := `
SELECT` + teamColumns + `
FROM permanent_teams
WHERE public_id IN (?)`

	bound, args, err := sqlx.In(query, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("bind list teams query: %w", err)
	}
	bound = r.db.Rebind(bound)

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, bound, args...); err != nil {
		return nil, fmt.Errorf("list teams by id: %w", err)
	}

	return r.attachMembers(ctx, rows)
}

func (r *TeamRepository) ListActive(ctx context.Context) ([]permanentteam.Team, error) {
	query := `
SELECT` + teamColumns + `
FROM permanent_teams
WHERE is_active
ORDER BY total_points DESC, created_at`

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active teams: %w", err)
	}

	return r.attachMembers(ctx, rows)
}

func (r *TeamRepository) List(ctx context.Context, filter permanentteam.ListFilter) ([]permanentteam.Team, int, error) {
	where := `WHERE is_active`
	args := []any{}
	if filter.Search != "" {
		where += ` AND name ILIKE $1`
		args = append(args, "%"+filter.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM permanent_teams ` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teams: %w", err)
	}

	query := `
SELECT` + teamColumns + `
FROM permanent_teams
` + where + fmt.Sprintf(`
ORDER BY total_points DESC, created_at
LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teams: %w", err)
	}

	teams, err := r.attachMembers(ctx, rows)
	if err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

func (r *TeamRepository) NameInUse(ctx context.Context, name, excludeTeamID string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1
    FROM permanent_teams
    WHERE is_active
      AND LOWER(name) = LOWER($1)
      AND public_id <> $2
)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name, excludeTeamID); err != nil {
		return false, fmt.Errorf("check team name: %w", err)
	}

	return exists, nil
}

func (r *TeamRepository) UpdateName(ctx context.Context, teamID, name string) error {
	const query = `
UPDATE permanent_teams
SET name = $2,
    updated_at = NOW()
WHERE public_id = $1`

	result, err := r.db.ExecContext(ctx, query, teamID, name)
	if err != nil {
		return fmt.Errorf("update team name: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("count renamed teams: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("team %s not found", teamID)
	}

	return nil
}

// ApplyMatchOutcome folds one match result into the cumulative counters in a
// single statement so the running average uses the pre-update matches_played.
func (r *TeamRepository) ApplyMatchOutcome(ctx context.Context, teamID string, outcome permanentteam.MatchOutcome) error {
	const query = `
UPDATE permanent_teams
SET total_points = total_points + $2,
    matches_played = matches_played + 1,
    wins = wins + CASE WHEN $3 THEN 1 ELSE 0 END,
    podiums = podiums + CASE WHEN $4 BETWEEN 1 AND 3 THEN 1 ELSE 0 END,
    top_fives = top_fives + CASE WHEN $4 BETWEEN 1 AND 5 THEN 1 ELSE 0 END,
    best_rank = CASE
        WHEN $4 > 0 AND (best_rank = 0 OR $4 < best_rank) THEN $4
        ELSE best_rank
    END,
    average_rank = CASE
        WHEN $4 > 0 THEN (average_rank * matches_played + $4) / (matches_played + 1)
        ELSE average_rank
    END,
    updated_at = NOW()
WHERE public_id = $1`

	result, err := r.db.ExecContext(ctx, query, teamID, outcome.PointsDelta, outcome.Win, outcome.Rank)
	if err != nil {
		return fmt.Errorf("apply match outcome: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("count updated teams: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("team %s not found", teamID)
	}

	return nil
}

func (r *TeamRepository) attachMembers(ctx context.Context, rows []teamTableModel) ([]permanentteam.Team, error) {
	teamIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		teamIDs = append(teamIDs, row.PublicID)
	}
	members, err := r.membersFor(ctx, teamIDs)
	if err != nil {
		return nil, err
	}

	out := make([]permanentteam.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(members[row.PublicID]))
	}

	return out, nil
}

func (r *TeamRepository) membersFor(ctx context.Context, teamIDs []string) (map[string][]permanentteam.Member, error) {
	if len(teamIDs) == 0 {
		return map[string][]permanentteam.Member{}, nil
	}

	query := `
SELECT` + teamMemberColumns + `
FROM permanent_team_members
WHERE team_public_id IN (?)
ORDER BY id`

	bound, args, err := sqlx.In(query, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("bind list team members query: %w", err)
	}
	bound = r.db.Rebind(bound)

	var rows []teamMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, bound, args...); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	out := make(map[string][]permanentteam.Member, len(teamIDs))
	for _, row := range rows {
		out[row.TeamPublicID] = append(out[row.TeamPublicID], row.toDomain())
	}

	return out, nil
}
