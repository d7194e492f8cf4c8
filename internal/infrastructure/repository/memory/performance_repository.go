package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mapl11/fantasy-cricket/internal/domain/performance"
)

type performanceRow struct {
	perf performance.Performance
	seq  int
}

type PerformanceRepository struct {
	mu      sync.RWMutex
	rows    map[string]performanceRow
	nextSeq int
}

func NewPerformanceRepository() *PerformanceRepository {
	return &PerformanceRepository{rows: make(map[string]performanceRow)}
}

func performanceKey(teamID, matchID string) string {
	return teamID + "|" + matchID
}

func clonePerformance(item performance.Performance) performance.Performance {
	out := item
	out.MemberPerformances = make([]performance.MemberPerformance, len(item.MemberPerformances))
	copy(out.MemberPerformances, item.MemberPerformances)

	return out
}

func (r *PerformanceRepository) GetByTeamAndMatch(_ context.Context, teamID, matchID string) (performance.Performance, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[performanceKey(teamID, matchID)]
	if !ok {
		return performance.Performance{}, false, nil
	}

	return clonePerformance(row.perf), true, nil
}

func (r *PerformanceRepository) Create(_ context.Context, perf performance.Performance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := performanceKey(perf.TeamID, perf.MatchID)
	if _, exists := r.rows[key]; exists {
		return fmt.Errorf("performance for team %s match %s already exists", perf.TeamID, perf.MatchID)
	}
	r.rows[key] = performanceRow{perf: clonePerformance(perf), seq: r.nextSeq}
	r.nextSeq++

	return nil
}

func (r *PerformanceRepository) Update(_ context.Context, perf performance.Performance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := performanceKey(perf.TeamID, perf.MatchID)
	row, ok := r.rows[key]
	if !ok {
		return fmt.Errorf("performance for team %s match %s not found", perf.TeamID, perf.MatchID)
	}
	row.perf = clonePerformance(perf)
	r.rows[key] = row

	return nil
}

func (r *PerformanceRepository) ListByMatchStatuses(_ context.Context, matchID string, statuses ...performance.Status) ([]performance.Performance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[performance.Status]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}

	rows := make([]performanceRow, 0, len(r.rows))
	for _, row := range r.rows {
		if row.perf.MatchID != matchID {
			continue
		}
		if _, ok := wanted[row.perf.Status]; !ok {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]performance.Performance, 0, len(rows))
	for _, row := range rows {
		out = append(out, clonePerformance(row.perf))
	}

	return out, nil
}

func (r *PerformanceRepository) ListCompletedByTeam(_ context.Context, teamID string, offset, limit int) ([]performance.Performance, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]performanceRow, 0, len(r.rows))
	for _, row := range r.rows {
		if row.perf.TeamID == teamID && row.perf.Status == performance.StatusCompleted {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].perf.UpdatedAt.Equal(rows[j].perf.UpdatedAt) {
			return rows[i].perf.UpdatedAt.After(rows[j].perf.UpdatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	total := len(rows)
	if offset >= total {
		return []performance.Performance{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	out := make([]performance.Performance, 0, end-offset)
	for _, row := range rows[offset:end] {
		out = append(out, clonePerformance(row.perf))
	}

	return out, total, nil
}
