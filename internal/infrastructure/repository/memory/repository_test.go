package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
	"github.com/mapl11/fantasy-cricket/internal/domain/queue"
)

func testTeam(id, name string, points int, createdAt time.Time) permanentteam.Team {
	return permanentteam.Team{
		ID:   id,
		Name: name,
		Members: []permanentteam.Member{
			{UserID: id + "-leader", Role: permanentteam.RoleLeader},
			{UserID: id + "-member", Role: permanentteam.RoleMember},
		},
		Stats:     permanentteam.Stats{TotalPoints: points},
		IsActive:  true,
		CreatedAt: createdAt,
	}
}

func TestTeamRepository_ListOrdersAndPages(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := NewTeamRepository([]permanentteam.Team{
		testTeam("team-a", "Swift Eagles", 300, base),
		testTeam("team-b", "Iron Titans", 500, base.Add(time.Minute)),
		testTeam("team-c", "Calm Sharks", 300, base.Add(2*time.Minute)),
		testTeam("team-d", "Bold Lions", 100, base.Add(3*time.Minute)),
	})

	items, total, err := repo.List(context.Background(), permanentteam.ListFilter{Offset: 0, Limit: 3})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, items, 3)
	require.Equal(t, "team-b", items[0].ID)
	// Equal points break the tie by earlier creation.
	require.Equal(t, "team-a", items[1].ID)
	require.Equal(t, "team-c", items[2].ID)

	items, total, err = repo.List(context.Background(), permanentteam.ListFilter{Offset: 3, Limit: 3})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, items, 1)
	require.Equal(t, "team-d", items[0].ID)
}

func TestTeamRepository_ListSearchFilter(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := NewTeamRepository([]permanentteam.Team{
		testTeam("team-a", "Swift Eagles", 300, base),
		testTeam("team-b", "Iron Titans", 500, base),
	})

	items, total, err := repo.List(context.Background(), permanentteam.ListFilter{Search: "  TITAN ", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, items, 1)
	require.Equal(t, "team-b", items[0].ID)
}

func TestTeamRepository_NameInUse(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	inactive := testTeam("team-c", "Retired Rhinos", 0, base)
	inactive.IsActive = false

	repo := NewTeamRepository([]permanentteam.Team{
		testTeam("team-a", "Swift Eagles", 300, base),
		inactive,
	})

	inUse, err := repo.NameInUse(context.Background(), "swift eagles", "")
	require.NoError(t, err)
	require.True(t, inUse)

	inUse, err = repo.NameInUse(context.Background(), "Swift Eagles", "team-a")
	require.NoError(t, err)
	require.False(t, inUse, "a team keeping its own name is not a clash")

	inUse, err = repo.NameInUse(context.Background(), "Retired Rhinos", "")
	require.NoError(t, err)
	require.False(t, inUse, "inactive teams do not reserve names")
}

func TestTeamRepository_ApplyMatchOutcomeRankMath(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := NewTeamRepository([]permanentteam.Team{testTeam("team-a", "Swift Eagles", 0, base)})
	ctx := context.Background()

	require.NoError(t, repo.ApplyMatchOutcome(ctx, "team-a", permanentteam.MatchOutcome{PointsDelta: 700, Win: true, Rank: 1}))
	require.NoError(t, repo.ApplyMatchOutcome(ctx, "team-a", permanentteam.MatchOutcome{PointsDelta: 400, Rank: 5}))

	team, found, err := repo.GetByID(ctx, "team-a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1100, team.Stats.TotalPoints)
	require.Equal(t, 2, team.Stats.MatchesPlayed)
	require.Equal(t, 1, team.Stats.Wins)
	require.Equal(t, 1, team.Stats.Podiums)
	require.Equal(t, 2, team.Stats.TopFives)
	require.Equal(t, 1, team.Stats.BestRank)
	require.InDelta(t, 3.0, team.Stats.AverageRank, 0.0001)

	require.Error(t, repo.ApplyMatchOutcome(ctx, "missing", permanentteam.MatchOutcome{}))
}

func TestQueueRepository_FIFOAndDeleteWaiting(t *testing.T) {
	repo := NewQueueRepository()
	ctx := context.Background()
	joined := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, queue.Entry{ID: "q-2", UserID: "user-002", JoinedAt: joined.Add(time.Second), Status: queue.StatusWaiting}))
	require.NoError(t, repo.Create(ctx, queue.Entry{ID: "q-1", UserID: "user-001", JoinedAt: joined, Status: queue.StatusWaiting}))
	// Same instant as q-1; insertion order decides.
	require.NoError(t, repo.Create(ctx, queue.Entry{ID: "q-3", UserID: "user-003", JoinedAt: joined, Status: queue.StatusWaiting}))

	waiting, err := repo.ListWaiting(ctx)
	require.NoError(t, err)
	require.Len(t, waiting, 3)
	require.Equal(t, "user-001", waiting[0].UserID)
	require.Equal(t, "user-003", waiting[1].UserID)
	require.Equal(t, "user-002", waiting[2].UserID)

	deleted, err := repo.DeleteWaiting(ctx, "user-001")
	require.NoError(t, err)
	require.True(t, deleted)

	repo.markMatched([]string{"user-002"}, "team-x")
	deleted, err = repo.DeleteWaiting(ctx, "user-002")
	require.NoError(t, err)
	require.False(t, deleted, "matched entries must survive a leave request")

	count, err := repo.CountWaiting(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestUserRepository_ApplyTeamBonus(t *testing.T) {
	repo := NewUserRepository(SeedUsers())
	ctx := context.Background()

	require.NoError(t, repo.ApplyTeamBonus(ctx, "user-001", 50))
	require.NoError(t, repo.ApplyTeamBonus(ctx, "user-001", 0))

	item, found, err := repo.GetByID(ctx, "user-001")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 50, item.TeamStats.BonusPointsEarned)
	require.Equal(t, 50, item.Stats.TotalFantasyPoints)
	require.Equal(t, 2, item.TeamStats.MatchesPlayed, "zero-bonus matches still count as played")

	require.NoError(t, repo.ApplyTeamBonus(ctx, "user-unknown", 50))
}

func TestFormationStore_CreateFormedTeam(t *testing.T) {
	users := NewUserRepository(SeedUsers())
	queues := NewQueueRepository()
	teams := NewTeamRepository(nil)
	store := NewFormationStore(teams, queues, users)
	ctx := context.Background()

	joined := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	memberIDs := []string{"user-001", "user-002", "user-003", "user-004"}
	for i, id := range memberIDs {
		require.NoError(t, queues.Create(ctx, queue.Entry{
			ID:       "q-" + id,
			UserID:   id,
			JoinedAt: joined.Add(time.Duration(i) * time.Second),
			Status:   queue.StatusWaiting,
		}))
	}

	team := permanentteam.Team{
		ID:   "team-001",
		Name: "Swift Eagles",
		Members: []permanentteam.Member{
			{UserID: "user-001", Role: permanentteam.RoleLeader},
			{UserID: "user-002", Role: permanentteam.RoleMember},
			{UserID: "user-003", Role: permanentteam.RoleMember},
			{UserID: "user-004", Role: permanentteam.RoleMember},
		},
		IsActive:  true,
		CreatedAt: joined,
	}
	require.NoError(t, store.CreateFormedTeam(ctx, team))

	stored, found, err := teams.GetByID(ctx, "team-001")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stored.Members, 4)

	for _, id := range memberIDs {
		entry, exists, err := queues.GetByUser(ctx, id)
		require.NoError(t, err)
		require.True(t, exists)
		require.Equal(t, queue.StatusMatched, entry.Status)
		require.Equal(t, "team-001", entry.AssignedTeamID)

		item, exists, err := users.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, exists)
		require.Equal(t, "team-001", item.PermanentTeamID)
	}

	count, err := queues.CountWaiting(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	require.Error(t, store.CreateFormedTeam(ctx, team), "duplicate team id must be rejected")
}
