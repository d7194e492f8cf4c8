package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]permanentteam.Team
}

func NewTeamRepository(teams []permanentteam.Team) *TeamRepository {
	byID := make(map[string]permanentteam.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = item
	}

	return &TeamRepository{teams: byID}
}

func cloneTeam(item permanentteam.Team) permanentteam.Team {
	out := item
	out.Members = make([]permanentteam.Member, len(item.Members))
	copy(out.Members, item.Members)

	return out
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (permanentteam.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	if !ok {
		return permanentteam.Team{}, false, nil
	}

	return cloneTeam(item), true, nil
}

func (r *TeamRepository) GetByIDs(_ context.Context, teamIDs []string) ([]permanentteam.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]permanentteam.Team, 0, len(teamIDs))
	for _, id := range teamIDs {
		if item, ok := r.teams[id]; ok {
			out = append(out, cloneTeam(item))
		}
	}

	return out, nil
}

func (r *TeamRepository) ListActive(_ context.Context) ([]permanentteam.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]permanentteam.Team, 0, len(r.teams))
	for _, item := range r.teams {
		if item.IsActive {
			out = append(out, cloneTeam(item))
		}
	}
	sortTeamsByPoints(out)

	return out, nil
}

func (r *TeamRepository) List(_ context.Context, filter permanentteam.ListFilter) ([]permanentteam.Team, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]permanentteam.Team, 0, len(r.teams))
	for _, item := range r.teams {
		if !item.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		matched = append(matched, cloneTeam(item))
	}
	sortTeamsByPoints(matched)

	total := len(matched)
	if filter.Offset >= total {
		return []permanentteam.Team{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}

	return matched[filter.Offset:end], total, nil
}

func (r *TeamRepository) NameInUse(_ context.Context, name, excludeTeamID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := strings.ToLower(strings.TrimSpace(name))
	for _, item := range r.teams {
		if item.ID == excludeTeamID || !item.IsActive {
			continue
		}
		if strings.ToLower(item.Name) == want {
			return true, nil
		}
	}

	return false, nil
}

func (r *TeamRepository) UpdateName(_ context.Context, teamID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[teamID]
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}
	item.Name = name
	r.teams[teamID] = item

	return nil
}

func (r *TeamRepository) ApplyMatchOutcome(_ context.Context, teamID string, outcome permanentteam.MatchOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[teamID]
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}

	played := item.Stats.MatchesPlayed
	item.Stats.TotalPoints += outcome.PointsDelta
	item.Stats.MatchesPlayed = played + 1
	if outcome.Win {
		item.Stats.Wins++
	}
	if outcome.Rank > 0 {
		if outcome.Rank <= 3 {
			item.Stats.Podiums++
		}
		if outcome.Rank <= 5 {
			item.Stats.TopFives++
		}
		if item.Stats.BestRank == 0 || outcome.Rank < item.Stats.BestRank {
			item.Stats.BestRank = outcome.Rank
		}
		item.Stats.AverageRank = (item.Stats.AverageRank*float64(played) + float64(outcome.Rank)) / float64(played+1)
	}
	r.teams[teamID] = item

	return nil
}

func (r *TeamRepository) insert(team permanentteam.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.teams[team.ID]; exists {
		return fmt.Errorf("team %s already exists", team.ID)
	}
	r.teams[team.ID] = cloneTeam(team)

	return nil
}

func sortTeamsByPoints(teams []permanentteam.Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Stats.TotalPoints != teams[j].Stats.TotalPoints {
			return teams[i].Stats.TotalPoints > teams[j].Stats.TotalPoints
		}
		return teams[i].CreatedAt.Before(teams[j].CreatedAt)
	})
}
