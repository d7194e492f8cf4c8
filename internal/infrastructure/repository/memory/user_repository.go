package memory

import (
	"context"
	"sync"

	"github.com/mapl11/fantasy-cricket/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	byID := make(map[string]user.User, len(users))
	for _, item := range users {
		byID[item.ID] = item
	}

	return &UserRepository{users: byID}
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.users[userID]

	return item, ok, nil
}

func (r *UserRepository) GetByIDs(_ context.Context, userIDs []string) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(userIDs))
	for _, id := range userIDs {
		if item, ok := r.users[id]; ok {
			out = append(out, item)
		}
	}

	return out, nil
}

func (r *UserRepository) SetPermanentTeam(_ context.Context, userIDs []string, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.setPermanentTeamLocked(userIDs, teamID)

	return nil
}

func (r *UserRepository) setPermanentTeamLocked(userIDs []string, teamID string) {
	for _, id := range userIDs {
		if item, ok := r.users[id]; ok {
			item.PermanentTeamID = teamID
			r.users[id] = item
		}
	}
}

func (r *UserRepository) ApplyTeamBonus(_ context.Context, userID string, bonus int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.users[userID]
	if !ok {
		return nil
	}
	item.TeamStats.BonusPointsEarned += bonus
	item.Stats.TotalFantasyPoints += bonus
	item.TeamStats.MatchesPlayed++
	r.users[userID] = item

	return nil
}
