package usecase

import (
	"errors"
	"testing"

	"github.com/mapl11/fantasy-cricket/internal/domain/notification"
	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
	"github.com/mapl11/fantasy-cricket/internal/domain/queue"
	"github.com/mapl11/fantasy-cricket/internal/domain/user"
	"github.com/mapl11/fantasy-cricket/internal/infrastructure/repository/memory"
)

func TestQueueService_Join_FormsTeamAtThreshold(t *testing.T) {
	notifier := newRecorderNotifier()
	fx := newQueueFixture(6, notifier)
	ctx := t.Context()

	for i, userID := range []string{"user-001", "user-002", "user-003"} {
		result, err := fx.service.Join(ctx, userID)
		if err != nil {
			t.Fatalf("join %s: %v", userID, err)
		}
		if result.Matched {
			t.Fatalf("expected %s to wait, got matched", userID)
		}
		if result.Position != i+1 {
			t.Fatalf("unexpected position for %s: got=%d want=%d", userID, result.Position, i+1)
		}
		if result.NeedMore != DefaultTeamSize-(i+1) {
			t.Fatalf("unexpected needMore for %s: got=%d want=%d", userID, result.NeedMore, DefaultTeamSize-(i+1))
		}
	}

	result, err := fx.service.Join(ctx, "user-004")
	if err != nil {
		t.Fatalf("join user-004: %v", err)
	}
	if !result.Matched {
		t.Fatal("expected fourth join to form a team")
	}
	if len(result.Team.Members) != DefaultTeamSize {
		t.Fatalf("unexpected member count: got=%d want=%d", len(result.Team.Members), DefaultTeamSize)
	}

	leader, ok := result.Team.Leader()
	if !ok {
		t.Fatal("formed team has no leader")
	}
	if leader.UserID != "user-001" {
		t.Fatalf("expected first-queued user to lead, got %s", leader.UserID)
	}

	for _, userID := range []string{"user-001", "user-002", "user-003", "user-004"} {
		u, _, err := fx.users.GetByID(ctx, userID)
		if err != nil {
			t.Fatalf("get user %s: %v", userID, err)
		}
		if u.PermanentTeamID != result.Team.ID {
			t.Fatalf("user %s not stamped with team: got=%q want=%q", userID, u.PermanentTeamID, result.Team.ID)
		}
	}

	count, err := fx.queue.CountWaiting(ctx)
	if err != nil {
		t.Fatalf("count waiting: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty waitlist after formation, got %d", count)
	}

	if got := notifier.countFor(notification.EventPermanentTeamFormed); got != 1 {
		t.Fatalf("expected 1 team-formed notification, got %d", got)
	}

	status, err := fx.service.Status(ctx, "user-002")
	if err != nil {
		t.Fatalf("status user-002: %v", err)
	}
	if status.State != QueueStateInTeam {
		t.Fatalf("unexpected state: got=%s want=%s", status.State, QueueStateInTeam)
	}
	if status.Team == nil || status.Team.ID != result.Team.ID {
		t.Fatal("status missing formed team")
	}
}

func TestQueueService_Join_FIFOBatchingLeavesRemainder(t *testing.T) {
	fx := newQueueFixture(9, nil)
	ctx := t.Context()

	teamIDs := make(map[string]struct{})
	for i := 1; i <= 9; i++ {
		userID := testUsers(9)[i-1].ID
		result, err := fx.service.Join(ctx, userID)
		if err != nil {
			t.Fatalf("join %s: %v", userID, err)
		}
		if result.Matched {
			teamIDs[result.Team.ID] = struct{}{}
		}
	}

	if len(teamIDs) != 2 {
		t.Fatalf("expected 2 formed teams, got %d", len(teamIDs))
	}

	count, err := fx.queue.CountWaiting(ctx)
	if err != nil {
		t.Fatalf("count waiting: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 leftover waiter, got %d", count)
	}

	status, err := fx.service.Status(ctx, "user-009")
	if err != nil {
		t.Fatalf("status user-009: %v", err)
	}
	if status.State != QueueStateWaiting || status.Position != 1 {
		t.Fatalf("expected ninth user waiting at position 1, got state=%s position=%d", status.State, status.Position)
	}
}

func TestQueueService_Join_RejectsUserAlreadyInTeam(t *testing.T) {
	fx := newQueueFixture(5, nil)
	ctx := t.Context()

	for _, userID := range []string{"user-001", "user-002", "user-003", "user-004"} {
		if _, err := fx.service.Join(ctx, userID); err != nil {
			t.Fatalf("join %s: %v", userID, err)
		}
	}

	_, err := fx.service.Join(ctx, "user-001")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for team member rejoin, got %v", err)
	}
}

func TestQueueService_Join_RejectsDuplicateWaiting(t *testing.T) {
	fx := newQueueFixture(3, nil)
	ctx := t.Context()

	if _, err := fx.service.Join(ctx, "user-001"); err != nil {
		t.Fatalf("first join: %v", err)
	}

	_, err := fx.service.Join(ctx, "user-001")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate join, got %v", err)
	}
}

func TestQueueService_Join_UnknownUser(t *testing.T) {
	fx := newQueueFixture(2, nil)

	_, err := fx.service.Join(t.Context(), "user-999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueueService_Join_HealsStaleMatchedEntry(t *testing.T) {
	ctx := t.Context()

	team := permanentteam.Team{
		ID:   "team-past",
		Name: "Mighty Titans",
		Members: []permanentteam.Member{
			{UserID: "user-001", Role: permanentteam.RoleLeader},
			{UserID: "user-002", Role: permanentteam.RoleMember},
			{UserID: "user-003", Role: permanentteam.RoleMember},
			{UserID: "user-004", Role: permanentteam.RoleMember},
		},
		IsActive: true,
	}

	users := memory.NewUserRepository([]user.User{{ID: "user-001", DisplayName: "Player 1"}})
	queueRepo := memory.NewQueueRepository()
	teams := memory.NewTeamRepository([]permanentteam.Team{team})
	formation := memory.NewFormationStore(teams, queueRepo, users)

	// Matched entry without the user-side team stamp.
	if err := queueRepo.Create(ctx, queue.Entry{
		ID:             "entry-stale",
		UserID:         "user-001",
		Status:         queue.StatusMatched,
		AssignedTeamID: team.ID,
	}); err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}

	service := NewQueueService(queueRepo, teams, formation, users, nil, &seqIDGenerator{prefix: "id"}, nil, DefaultTeamSize)

	result, err := service.Join(ctx, "user-001")
	if err != nil {
		t.Fatalf("join with stale entry: %v", err)
	}
	if !result.Matched || result.Team.ID != team.ID {
		t.Fatalf("expected heal to return assigned team, got matched=%v team=%s", result.Matched, result.Team.ID)
	}

	u, _, err := users.GetByID(ctx, "user-001")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.PermanentTeamID != team.ID {
		t.Fatalf("expected restamped team reference, got %q", u.PermanentTeamID)
	}
}

func TestQueueService_Leave(t *testing.T) {
	fx := newQueueFixture(2, nil)
	ctx := t.Context()

	if _, err := fx.service.Join(ctx, "user-001"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := fx.service.Leave(ctx, "user-001"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	status, err := fx.service.Status(ctx, "user-001")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != QueueStateNotJoined {
		t.Fatalf("expected not_joined after leave, got %s", status.State)
	}

	err = fx.service.Leave(ctx, "user-001")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for second leave, got %v", err)
	}
}

func TestQueueService_Status_Waiting(t *testing.T) {
	fx := newQueueFixture(3, nil)
	ctx := t.Context()

	for _, userID := range []string{"user-001", "user-002"} {
		if _, err := fx.service.Join(ctx, userID); err != nil {
			t.Fatalf("join %s: %v", userID, err)
		}
	}

	status, err := fx.service.Status(ctx, "user-002")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != QueueStateWaiting {
		t.Fatalf("unexpected state: got=%s want=%s", status.State, QueueStateWaiting)
	}
	if status.Position != 2 || status.TotalWaiting != 2 || status.NeedMore != 2 {
		t.Fatalf("unexpected status numbers: position=%d total=%d needMore=%d", status.Position, status.TotalWaiting, status.NeedMore)
	}
}

func TestQueueService_ProcessQueue_BelowThresholdIsNoop(t *testing.T) {
	fx := newQueueFixture(3, nil)
	ctx := t.Context()

	for _, userID := range []string{"user-001", "user-002", "user-003"} {
		if _, err := fx.service.Join(ctx, userID); err != nil {
			t.Fatalf("join %s: %v", userID, err)
		}
	}

	if err := fx.service.ProcessQueue(ctx); err != nil {
		t.Fatalf("process queue: %v", err)
	}

	count, err := fx.queue.CountWaiting(ctx)
	if err != nil {
		t.Fatalf("count waiting: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 waiters untouched, got %d", count)
	}
}
