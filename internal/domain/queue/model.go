package queue

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a formation queue entry.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusMatched Status = "matched"
)

// Entry is one user's place in the permanent-team formation waitlist.
// At most one entry exists per user; matched entries keep the assigned
// team reference so a rejoin can self-heal.
type Entry struct {
	ID             string
	UserID         string
	JoinedAt       time.Time
	Status         Status
	AssignedTeamID string
}

func (e Entry) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("queue entry user id is required")
	}
	if e.Status != StatusWaiting && e.Status != StatusMatched {
		return fmt.Errorf("queue entry status %q is invalid", e.Status)
	}
	if e.Status == StatusMatched && e.AssignedTeamID == "" {
		return fmt.Errorf("matched queue entry requires an assigned team")
	}

	return nil
}
