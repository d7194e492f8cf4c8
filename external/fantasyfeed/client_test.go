package fantasyfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

func TestClientFantasyEntry(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/matches/match-1/users/user-001/fantasy-entry" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "feed-key" {
			t.Fatalf("unexpected X-Api-Key: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"fantasy_team_id": "ft-777",
			"points":          120,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "feed-key", nil)

	entry, found, err := client.FantasyEntry(context.Background(), "user-001", "match-1")
	if err != nil {
		t.Fatalf("fantasy entry: %v", err)
	}
	if !found {
		t.Fatalf("expected entry to be found")
	}
	if entry.FantasyTeamID != "ft-777" || entry.Points != 120 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestClientFantasyEntry_MissingEntryIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", nil)

	_, found, err := client.FantasyEntry(context.Background(), "user-001", "match-1")
	if err != nil {
		t.Fatalf("expected no error for missing entry, got %v", err)
	}
	if found {
		t.Fatalf("expected found=false for missing entry")
	}
}

func TestClientPredictionPoints(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/matches/match-1/users/user-002/prediction-points" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{"points": 15})
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", nil)

	points, found, err := client.PredictionPoints(context.Background(), "user-002", "match-1")
	if err != nil {
		t.Fatalf("prediction points: %v", err)
	}
	if !found || points != 15 {
		t.Fatalf("unexpected prediction points: found=%v points=%d", found, points)
	}
}

func TestClientUsersWithFantasyEntry(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/matches/match-1/fantasy-entries" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"user_ids": []string{"user-001", "user-002"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", nil)

	userIDs, err := client.UsersWithFantasyEntry(context.Background(), "match-1")
	if err != nil {
		t.Fatalf("users with fantasy entry: %v", err)
	}
	if len(userIDs) != 2 || userIDs[0] != "user-001" || userIDs[1] != "user-002" {
		t.Fatalf("unexpected user ids: %v", userIDs)
	}
}

func TestClientServerErrorMapsToDependencyUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", nil)

	_, err := client.UsersWithFantasyEntry(context.Background(), "match-1")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestClientCircuitBreakerStopsTrafficAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", nil)

	for i := 0; i < 5; i++ {
		if _, err := client.UsersWithFantasyEntry(context.Background(), "match-1"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("call %d: expected ErrDependencyUnavailable, got %v", i+1, err)
		}
	}

	// The breaker is open now; the next call must fail fast.
	if _, err := client.UsersWithFantasyEntry(context.Background(), "match-1"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected fast rejection, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 5 {
		t.Fatalf("expected no request past the open breaker, server saw %d", got)
	}
}

func TestClientMissingEntryDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "", nil)

	for i := 0; i < 8; i++ {
		if _, found, err := client.FantasyEntry(context.Background(), "user-001", "match-1"); err != nil || found {
			t.Fatalf("call %d: expected clean miss, found=%v err=%v", i+1, found, err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 8 {
		t.Fatalf("404s must keep the circuit closed, server saw %d of 8", got)
	}
}
