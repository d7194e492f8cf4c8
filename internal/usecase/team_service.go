package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mapl11/fantasy-cricket/internal/domain/performance"
	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
	"github.com/mapl11/fantasy-cricket/internal/domain/user"
)

const (
	defaultTeamPageLimit    = 20
	defaultHistoryPageLimit = 10
)

// RankedTeam is a team with its position in a points-ordered listing.
// Rank is page-positional (skip + index + 1); ties share no special handling.
type RankedTeam struct {
	Team permanentteam.Team
	Rank int
}

type TeamPage struct {
	Items      []RankedTeam
	Pagination Pagination
}

type HistoryPage struct {
	Items      []performance.Performance
	Pagination Pagination
}

// TeamService serves the read paths of the team registry plus the
// leader-only rename.
type TeamService struct {
	teamRepo permanentteam.Repository
	userRepo user.Repository
	perfRepo performance.Repository
}

func NewTeamService(
	teamRepo permanentteam.Repository,
	userRepo user.Repository,
	perfRepo performance.Repository,
) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		perfRepo: perfRepo,
	}
}

func (s *TeamService) GetMyTeam(ctx context.Context, userID string) (permanentteam.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetMyTeam")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return permanentteam.Team{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	u, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return permanentteam.Team{}, fmt.Errorf("get user: %w", err)
	}
	if !exists || u.PermanentTeamID == "" {
		return permanentteam.Team{}, fmt.Errorf("%w: user has no permanent team", ErrNotFound)
	}

	return s.GetTeamByID(ctx, u.PermanentTeamID)
}

func (s *TeamService) GetTeamByID(ctx context.Context, teamID string) (permanentteam.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetTeamByID")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return permanentteam.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	team, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return permanentteam.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !found {
		return permanentteam.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	return team, nil
}

// Rename changes a team's display name. Only the leader may rename, and the
// trimmed name must not collide with another active team.
func (s *TeamService) Rename(ctx context.Context, teamID, requesterID, newName string) (permanentteam.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Rename")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	requesterID = strings.TrimSpace(requesterID)
	newName = strings.TrimSpace(newName)
	if teamID == "" || requesterID == "" {
		return permanentteam.Team{}, fmt.Errorf("%w: team id and requester id are required", ErrInvalidInput)
	}
	if err := permanentteam.ValidateName(newName); err != nil {
		return permanentteam.Team{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	team, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return permanentteam.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !found {
		return permanentteam.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	leader, ok := team.Leader()
	if !ok || leader.UserID != requesterID {
		return permanentteam.Team{}, fmt.Errorf("%w: only the team leader can rename the team", ErrForbidden)
	}

	taken, err := s.teamRepo.NameInUse(ctx, newName, teamID)
	if err != nil {
		return permanentteam.Team{}, fmt.Errorf("check team name: %w", err)
	}
	if taken {
		return permanentteam.Team{}, fmt.Errorf("%w: team name already taken", ErrConflict)
	}

	if err := s.teamRepo.UpdateName(ctx, teamID, newName); err != nil {
		return permanentteam.Team{}, fmt.Errorf("update team name: %w", err)
	}

	team.Name = newName
	return team, nil
}

// ListTeams pages active teams ordered by cumulative points, optionally
// filtered by a name substring.
func (s *TeamService) ListTeams(ctx context.Context, page, limit int, search string) (TeamPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeams")
	defer span.End()

	return s.pagedTeams(ctx, page, limit, strings.TrimSpace(search))
}

// Leaderboard is the points-ordered listing without a search filter.
func (s *TeamService) Leaderboard(ctx context.Context, page, limit int) (TeamPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Leaderboard")
	defer span.End()

	return s.pagedTeams(ctx, page, limit, "")
}

func (s *TeamService) pagedTeams(ctx context.Context, page, limit int, search string) (TeamPage, error) {
	page, limit = normalizePage(page, limit, defaultTeamPageLimit)
	offset := (page - 1) * limit

	teams, total, err := s.teamRepo.List(ctx, permanentteam.ListFilter{
		Search: search,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return TeamPage{}, fmt.Errorf("list teams: %w", err)
	}

	items := make([]RankedTeam, 0, len(teams))
	for i, team := range teams {
		items = append(items, RankedTeam{Team: team, Rank: offset + i + 1})
	}

	return TeamPage{Items: items, Pagination: paginationFor(page, limit, total)}, nil
}

// MatchHistory pages a team's completed performance records, newest first.
func (s *TeamService) MatchHistory(ctx context.Context, teamID string, page, limit int) (HistoryPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.MatchHistory")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return HistoryPage{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	if _, err := s.GetTeamByID(ctx, teamID); err != nil {
		return HistoryPage{}, err
	}

	page, limit = normalizePage(page, limit, defaultHistoryPageLimit)
	offset := (page - 1) * limit

	items, total, err := s.perfRepo.ListCompletedByTeam(ctx, teamID, offset, limit)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("list team match history: %w", err)
	}

	return HistoryPage{Items: items, Pagination: paginationFor(page, limit, total)}, nil
}
