package notification

import "context"

// Event names pushed to clients.
const (
	EventPermanentTeamFormed = "permanent-team-formed"
	EventTeamBonusAwarded    = "team-bonus-awarded"
	EventScoreUpdate         = "score-update"
)

// Notifier is a fire-and-forget side channel. Implementations must never
// block the caller or fail the surrounding operation; lost notifications
// are acceptable, inconsistent core state is not.
type Notifier interface {
	NotifyUsers(ctx context.Context, userIDs []string, event string, payload any)
	BroadcastToMatch(ctx context.Context, matchID, event string, payload any)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) NotifyUsers(context.Context, []string, string, any)    {}
func (Nop) BroadcastToMatch(context.Context, string, string, any) {}
