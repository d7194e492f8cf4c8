package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mapl11/fantasy-cricket/internal/domain/scoring"
)

// ScoreSource is an in-memory scoring.Source fed by test fixtures or a
// local development seed.
type ScoreSource struct {
	mu          sync.RWMutex
	entries     map[string]map[string]scoring.FantasyEntry
	predictions map[string]map[string]int
}

func NewScoreSource() *ScoreSource {
	return &ScoreSource{
		entries:     make(map[string]map[string]scoring.FantasyEntry),
		predictions: make(map[string]map[string]int),
	}
}

func (s *ScoreSource) SetFantasyEntry(matchID, userID string, entry scoring.FantasyEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[matchID] == nil {
		s.entries[matchID] = make(map[string]scoring.FantasyEntry)
	}
	s.entries[matchID][userID] = entry
}

func (s *ScoreSource) SetPredictionPoints(matchID, userID string, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.predictions[matchID] == nil {
		s.predictions[matchID] = make(map[string]int)
	}
	s.predictions[matchID][userID] = points
}

func (s *ScoreSource) FantasyEntry(_ context.Context, userID, matchID string) (scoring.FantasyEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[matchID][userID]

	return entry, ok, nil
}

func (s *ScoreSource) PredictionPoints(_ context.Context, userID, matchID string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points, ok := s.predictions[matchID][userID]

	return points, ok, nil
}

func (s *ScoreSource) UsersWithFantasyEntry(_ context.Context, matchID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.entries[matchID]))
	for userID := range s.entries[matchID] {
		out = append(out, userID)
	}
	sort.Strings(out)

	return out, nil
}
