package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mapl11/fantasy-cricket/internal/domain/user"
	"github.com/mapl11/fantasy-cricket/internal/infrastructure/repository/memory"
)

type seqIDGenerator struct {
	prefix string
	next   int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.next++

	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

type recordedNotification struct {
	UserIDs []string
	MatchID string
	Event   string
	Payload any
}

type recorderNotifier struct {
	mu     sync.Mutex
	sent   []recordedNotification
	events map[string]int
}

func newRecorderNotifier() *recorderNotifier {
	return &recorderNotifier{events: make(map[string]int)}
}

func (n *recorderNotifier) NotifyUsers(_ context.Context, userIDs []string, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, recordedNotification{UserIDs: userIDs, Event: event, Payload: payload})
	n.events[event]++
}

func (n *recorderNotifier) BroadcastToMatch(_ context.Context, matchID, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, recordedNotification{MatchID: matchID, Event: event, Payload: payload})
	n.events[event]++
}

func (n *recorderNotifier) firstFor(event string) (recordedNotification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sent := range n.sent {
		if sent.Event == event {
			return sent, true
		}
	}

	return recordedNotification{}, false
}

func (n *recorderNotifier) countFor(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.events[event]
}

func testUsers(n int) []user.User {
	users := make([]user.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, user.User{
			ID:          fmt.Sprintf("user-%03d", i),
			DisplayName: fmt.Sprintf("Player %d", i),
		})
	}

	return users
}

type queueFixture struct {
	users   *memory.UserRepository
	queue   *memory.QueueRepository
	teams   *memory.TeamRepository
	service *QueueService
}

func newQueueFixture(userCount int, notifier *recorderNotifier) queueFixture {
	if notifier == nil {
		notifier = newRecorderNotifier()
	}
	users := memory.NewUserRepository(testUsers(userCount))
	queueRepo := memory.NewQueueRepository()
	teams := memory.NewTeamRepository(nil)
	formation := memory.NewFormationStore(teams, queueRepo, users)

	service := NewQueueService(
		queueRepo,
		teams,
		formation,
		users,
		notifier,
		&seqIDGenerator{prefix: "id"},
		nil,
		DefaultTeamSize,
	)
	service.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	return queueFixture{users: users, queue: queueRepo, teams: teams, service: service}
}
