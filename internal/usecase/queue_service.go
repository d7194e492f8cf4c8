package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mapl11/fantasy-cricket/internal/domain/notification"
	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
	"github.com/mapl11/fantasy-cricket/internal/domain/queue"
	"github.com/mapl11/fantasy-cricket/internal/domain/user"
	idgen "github.com/mapl11/fantasy-cricket/internal/platform/id"
	"github.com/mapl11/fantasy-cricket/internal/platform/logging"
)

// DefaultTeamSize is the fixed membership size of a permanent team.
const DefaultTeamSize = 4

// QueueJoinResult is the outcome of a join request: either the user was
// matched into a team right away or they are waiting with a queue position.
type QueueJoinResult struct {
	Matched      bool
	Team         permanentteam.Team
	Position     int
	TotalWaiting int
	NeedMore     int
}

// QueueStatus reports where a user stands relative to team formation.
type QueueStatus struct {
	State        QueueState
	Team         *permanentteam.Team
	Position     int
	TotalWaiting int
	NeedMore     int
}

type QueueState string

const (
	QueueStateNotJoined QueueState = "not_joined"
	QueueStateWaiting   QueueState = "waiting"
	QueueStateMatched   QueueState = "matched"
	QueueStateInTeam    QueueState = "in_team"
)

// QueueService owns the formation waitlist: joining, leaving, status, and the
// FIFO matching pass that turns every full batch of waiters into a team.
// All queue mutations are serialized behind one lock so concurrent joins can
// never form the same user into two teams.
type QueueService struct {
	queueRepo queue.Repository
	teamRepo  permanentteam.Repository
	formation permanentteam.FormationStore
	userRepo  user.Repository
	notifier  notification.Notifier
	idGen     idgen.Generator
	logger    *logging.Logger
	teamSize  int
	now       func() time.Time

	mu sync.Mutex
}

func NewQueueService(
	queueRepo queue.Repository,
	teamRepo permanentteam.Repository,
	formation permanentteam.FormationStore,
	userRepo user.Repository,
	notifier notification.Notifier,
	idGen idgen.Generator,
	logger *logging.Logger,
	teamSize int,
) *QueueService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notification.Nop{}
	}
	if teamSize < 2 {
		teamSize = DefaultTeamSize
	}

	return &QueueService{
		queueRepo: queueRepo,
		teamRepo:  teamRepo,
		formation: formation,
		userRepo:  userRepo,
		notifier:  notifier,
		idGen:     idGen,
		logger:    logger,
		teamSize:  teamSize,
		now:       time.Now,
	}
}

// Join puts the user on the waitlist and immediately runs a matching pass.
// A user already holding a team gets ErrConflict; a stale matched entry
// self-heals by re-stamping the team reference and returning the team.
func (s *QueueService) Join(ctx context.Context, userID string) (QueueJoinResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.Join")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return QueueJoinResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return QueueJoinResult{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return QueueJoinResult{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}
	if u.PermanentTeamID != "" {
		return QueueJoinResult{}, fmt.Errorf("%w: user already belongs to a permanent team", ErrConflict)
	}

	entry, queued, err := s.queueRepo.GetByUser(ctx, userID)
	if err != nil {
		return QueueJoinResult{}, fmt.Errorf("get queue entry: %w", err)
	}
	if queued {
		if entry.Status == queue.StatusMatched && entry.AssignedTeamID != "" {
			return s.healMatchedEntry(ctx, userID, entry.AssignedTeamID)
		}
		return QueueJoinResult{}, fmt.Errorf("%w: user is already in the formation queue", ErrConflict)
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return QueueJoinResult{}, fmt.Errorf("generate queue entry id: %w", err)
	}
	newEntry := queue.Entry{
		ID:       entryID,
		UserID:   userID,
		JoinedAt: s.now().UTC(),
		Status:   queue.StatusWaiting,
	}
	if err := newEntry.Validate(); err != nil {
		return QueueJoinResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := s.queueRepo.Create(ctx, newEntry); err != nil {
		return QueueJoinResult{}, fmt.Errorf("create queue entry: %w", err)
	}

	if err := s.processLocked(ctx); err != nil {
		return QueueJoinResult{}, err
	}

	entry, queued, err = s.queueRepo.GetByUser(ctx, userID)
	if err != nil {
		return QueueJoinResult{}, fmt.Errorf("reload queue entry: %w", err)
	}
	if queued && entry.Status == queue.StatusMatched {
		team, found, err := s.teamRepo.GetByID(ctx, entry.AssignedTeamID)
		if err != nil {
			return QueueJoinResult{}, fmt.Errorf("get formed team: %w", err)
		}
		if found {
			return QueueJoinResult{Matched: true, Team: team}, nil
		}
	}

	position, totalWaiting, err := s.waitingPosition(ctx, userID)
	if err != nil {
		return QueueJoinResult{}, err
	}

	return QueueJoinResult{
		Position:     position,
		TotalWaiting: totalWaiting,
		NeedMore:     s.teamSize - totalWaiting,
	}, nil
}

// Leave removes the user's waiting entry. Leaving is only valid while waiting.
func (s *QueueService) Leave(ctx context.Context, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.Leave")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.queueRepo.DeleteWaiting(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete queue entry: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: user is not in the formation queue", ErrConflict)
	}

	s.logger.InfoContext(ctx, "user left formation queue", "user_id", userID)
	return nil
}

// Status reports the user's current formation state.
func (s *QueueService) Status(ctx context.Context, userID string) (QueueStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.Status")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return QueueStatus{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	u, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return QueueStatus{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}
	if u.PermanentTeamID != "" {
		team, found, err := s.teamRepo.GetByID(ctx, u.PermanentTeamID)
		if err != nil {
			return QueueStatus{}, fmt.Errorf("get user team: %w", err)
		}
		if found {
			return QueueStatus{State: QueueStateInTeam, Team: &team}, nil
		}
	}

	entry, queued, err := s.queueRepo.GetByUser(ctx, userID)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("get queue entry: %w", err)
	}
	if !queued {
		return QueueStatus{State: QueueStateNotJoined}, nil
	}

	if entry.Status == queue.StatusMatched {
		team, found, err := s.teamRepo.GetByID(ctx, entry.AssignedTeamID)
		if err != nil {
			return QueueStatus{}, fmt.Errorf("get assigned team: %w", err)
		}
		if found {
			return QueueStatus{State: QueueStateMatched, Team: &team}, nil
		}
		return QueueStatus{State: QueueStateNotJoined}, nil
	}

	position, totalWaiting, err := s.waitingPosition(ctx, userID)
	if err != nil {
		return QueueStatus{}, err
	}

	return QueueStatus{
		State:        QueueStateWaiting,
		Position:     position,
		TotalWaiting: totalWaiting,
		NeedMore:     s.teamSize - totalWaiting,
	}, nil
}

// ProcessQueue runs a matching pass over the waitlist. Safe to invoke
// redundantly; below-threshold queues are left untouched.
func (s *QueueService) ProcessQueue(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.ProcessQueue")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.processLocked(ctx)
}

func (s *QueueService) processLocked(ctx context.Context) error {
	waiting, err := s.queueRepo.ListWaiting(ctx)
	if err != nil {
		return fmt.Errorf("list waiting entries: %w", err)
	}

	for len(waiting) >= s.teamSize {
		batch := waiting[:s.teamSize]
		waiting = waiting[s.teamSize:]

		if err := s.formTeam(ctx, batch); err != nil {
			return err
		}
	}

	return nil
}

func (s *QueueService) formTeam(ctx context.Context, batch []queue.Entry) error {
	name, err := s.uniqueTeamName(ctx)
	if err != nil {
		return err
	}

	teamID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate team id: %w", err)
	}

	memberIDs := make([]string, 0, len(batch))
	for _, entry := range batch {
		memberIDs = append(memberIDs, entry.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, memberIDs)
	if err != nil {
		return fmt.Errorf("load member users: %w", err)
	}
	userByID := make(map[string]user.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	now := s.now().UTC()
	members := make([]permanentteam.Member, 0, len(batch))
	for i, entry := range batch {
		role := permanentteam.RoleMember
		if i == 0 {
			role = permanentteam.RoleLeader
		}
		members = append(members, permanentteam.Member{
			UserID:      entry.UserID,
			DisplayName: userByID[entry.UserID].DisplayName,
			Avatar:      userByID[entry.UserID].Avatar,
			JoinedAt:    now,
			Role:        role,
		})
	}

	team := permanentteam.Team{
		ID:        teamID,
		Name:      name,
		Members:   members,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := team.Validate(); err != nil {
		return fmt.Errorf("validate formed team: %w", err)
	}

	if err := s.formation.CreateFormedTeam(ctx, team); err != nil {
		return fmt.Errorf("create formed team: %w", err)
	}

	s.logger.InfoContext(ctx, "permanent team formed",
		"team_id", team.ID,
		"team_name", team.Name,
		"member_count", len(team.Members),
	)

	s.notifier.NotifyUsers(ctx, memberIDs, notification.EventPermanentTeamFormed, map[string]any{
		"teamId":   team.ID,
		"teamName": team.Name,
		"members":  team.Members,
	})

	return nil
}

func (s *QueueService) uniqueTeamName(ctx context.Context) (string, error) {
	for attempt := 0; attempt < permanentteam.NameAttempts; attempt++ {
		candidate := permanentteam.RandomName()
		taken, err := s.teamRepo.NameInUse(ctx, candidate, "")
		if err != nil {
			return "", fmt.Errorf("check team name: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return permanentteam.FallbackName(s.now()), nil
}

func (s *QueueService) healMatchedEntry(ctx context.Context, userID, teamID string) (QueueJoinResult, error) {
	team, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return QueueJoinResult{}, fmt.Errorf("get assigned team: %w", err)
	}
	if !found {
		return QueueJoinResult{}, fmt.Errorf("%w: assigned team=%s", ErrNotFound, teamID)
	}

	// The queue entry was matched but the user record missed the stamp.
	if err := s.userRepo.SetPermanentTeam(ctx, []string{userID}, teamID); err != nil {
		return QueueJoinResult{}, fmt.Errorf("restamp permanent team: %w", err)
	}
	s.logger.WarnContext(ctx, "healed stale matched queue entry", "user_id", userID, "team_id", teamID)

	return QueueJoinResult{Matched: true, Team: team}, nil
}

func (s *QueueService) waitingPosition(ctx context.Context, userID string) (int, int, error) {
	waiting, err := s.queueRepo.ListWaiting(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list waiting entries: %w", err)
	}

	position := 0
	for i, entry := range waiting {
		if entry.UserID == userID {
			position = i + 1
			break
		}
	}

	return position, len(waiting), nil
}
