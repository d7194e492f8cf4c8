package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mapl11/fantasy-cricket/internal/domain/user"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
id, public_id, display_name, avatar, permanent_team_public_id,
total_fantasy_points, team_bonus_points, team_matches_played,
created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	query := `
SELECT` + userColumns + `
FROM users
WHERE public_id = $1`

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, userIDs []string) ([]user.User, error) {
	if len(userIDs) == 0 {
		return []user.User{}, nil
	}

	query := `
SELECT` + userColumns + `
FROM users
WHERE public_id IN (?)`

	query, args, err := sqlx.In(query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("bind list users query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *UserRepository) SetPermanentTeam(ctx context.Context, userIDs []string, teamID string) error {
	if len(userIDs) == 0 {
		return nil
	}

	const query = `
UPDATE users
SET permanent_team_public_id = ?,
    updated_at = NOW()
WHERE public_id IN (?)`

	bound, args, err := sqlx.In(query, teamID, userIDs)
	if err != nil {
		return fmt.Errorf("bind set permanent team query: %w", err)
	}
	bound = r.db.Rebind(bound)

	if _, err := r.db.ExecContext(ctx, bound, args...); err != nil {
		return fmt.Errorf("set permanent team: %w", err)
	}

	return nil
}

func (r *UserRepository) ApplyTeamBonus(ctx context.Context, userID string, bonus int) error {
	const query = `
UPDATE users
SET team_bonus_points = team_bonus_points + $2,
    total_fantasy_points = total_fantasy_points + $2,
    team_matches_played = team_matches_played + 1,
    updated_at = NOW()
WHERE public_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID, bonus); err != nil {
		return fmt.Errorf("apply team bonus: %w", err)
	}

	return nil
}
