package memory

import (
	"context"
	"fmt"

	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
)

// FormationStore applies a team formation across the three in-memory stores.
// The calling service serializes formations, so the sequential writes here
// are never observed half-applied.
type FormationStore struct {
	teams *TeamRepository
	queue *QueueRepository
	users *UserRepository
}

func NewFormationStore(teams *TeamRepository, queue *QueueRepository, users *UserRepository) *FormationStore {
	return &FormationStore{teams: teams, queue: queue, users: users}
}

func (s *FormationStore) CreateFormedTeam(ctx context.Context, team permanentteam.Team) error {
	if err := s.teams.insert(team); err != nil {
		return fmt.Errorf("insert team: %w", err)
	}

	memberIDs := team.MemberUserIDs()
	s.queue.markMatched(memberIDs, team.ID)

	return s.users.SetPermanentTeam(ctx, memberIDs, team.ID)
}
