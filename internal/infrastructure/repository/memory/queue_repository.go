package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mapl11/fantasy-cricket/internal/domain/queue"
)

type queueRow struct {
	entry queue.Entry
	seq   int
}

type QueueRepository struct {
	mu      sync.RWMutex
	byUser  map[string]queueRow
	nextSeq int
}

func NewQueueRepository() *QueueRepository {
	return &QueueRepository{byUser: make(map[string]queueRow)}
}

func (r *QueueRepository) GetByUser(_ context.Context, userID string) (queue.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.byUser[userID]

	return row.entry, ok, nil
}

func (r *QueueRepository) ListWaiting(_ context.Context) ([]queue.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]queueRow, 0, len(r.byUser))
	for _, row := range r.byUser {
		if row.entry.Status == queue.StatusWaiting {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].entry.JoinedAt.Equal(rows[j].entry.JoinedAt) {
			return rows[i].entry.JoinedAt.Before(rows[j].entry.JoinedAt)
		}
		return rows[i].seq < rows[j].seq
	})

	out := make([]queue.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entry)
	}

	return out, nil
}

func (r *QueueRepository) CountWaiting(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, row := range r.byUser {
		if row.entry.Status == queue.StatusWaiting {
			count++
		}
	}

	return count, nil
}

func (r *QueueRepository) Create(_ context.Context, entry queue.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byUser[entry.UserID] = queueRow{entry: entry, seq: r.nextSeq}
	r.nextSeq++

	return nil
}

func (r *QueueRepository) DeleteWaiting(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.byUser[userID]
	if !ok || row.entry.Status != queue.StatusWaiting {
		return false, nil
	}
	delete(r.byUser, userID)

	return true, nil
}

func (r *QueueRepository) markMatched(userIDs []string, teamID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range userIDs {
		if row, ok := r.byUser[id]; ok {
			row.entry.Status = queue.StatusMatched
			row.entry.AssignedTeamID = teamID
			r.byUser[id] = row
		}
	}
}
