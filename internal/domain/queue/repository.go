package queue

import "context"

// Repository describes formation queue persistence needs from use cases.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (Entry, bool, error)
	// ListWaiting returns waiting entries ordered by join time ascending,
	// ties broken by insertion order.
	ListWaiting(ctx context.Context) ([]Entry, error)
	CountWaiting(ctx context.Context) (int, error)
	Create(ctx context.Context, entry Entry) error
	// DeleteWaiting removes the user's waiting entry and reports whether one existed.
	DeleteWaiting(ctx context.Context, userID string) (bool, error)
}
