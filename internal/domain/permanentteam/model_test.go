package permanentteam

import (
	"strings"
	"testing"
	"time"
)

func validTeam() Team {
	return Team{
		ID:   "team-1",
		Name: "Mighty Titans",
		Members: []Member{
			{UserID: "user-1", Role: RoleLeader},
			{UserID: "user-2", Role: RoleMember},
			{UserID: "user-3", Role: RoleMember},
			{UserID: "user-4", Role: RoleMember},
		},
		IsActive: true,
	}
}

func TestTeamValidate(t *testing.T) {
	if err := validTeam().Validate(); err != nil {
		t.Fatalf("valid team rejected: %v", err)
	}

	t.Run("requires exactly one leader", func(t *testing.T) {
		team := validTeam()
		team.Members[1].Role = RoleLeader
		if err := team.Validate(); err == nil {
			t.Fatal("expected two-leader team rejected")
		}

		team = validTeam()
		team.Members[0].Role = RoleMember
		if err := team.Validate(); err == nil {
			t.Fatal("expected leaderless team rejected")
		}
	})

	t.Run("rejects duplicate members", func(t *testing.T) {
		team := validTeam()
		team.Members[3].UserID = "user-2"
		if err := team.Validate(); err == nil {
			t.Fatal("expected duplicate member rejected")
		}
	})
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("OK"); err != nil {
		t.Fatalf("two-character name rejected: %v", err)
	}
	if err := ValidateName(strings.Repeat("a", NameMaxLength)); err != nil {
		t.Fatalf("max-length name rejected: %v", err)
	}
	if err := ValidateName("x"); err == nil {
		t.Fatal("expected single-character name rejected")
	}
	if err := ValidateName(strings.Repeat("a", NameMaxLength+1)); err == nil {
		t.Fatal("expected over-length name rejected")
	}
	if err := ValidateName("   "); err == nil {
		t.Fatal("expected blank name rejected")
	}
}

func TestRandomNameDrawsFromPools(t *testing.T) {
	for i := 0; i < 50; i++ {
		name := RandomName()
		parts := strings.SplitN(name, " ", 2)
		if len(parts) != 2 {
			t.Fatalf("unexpected name shape: %q", name)
		}
		if err := ValidateName(name); err != nil {
			t.Fatalf("generated name invalid: %q: %v", name, err)
		}
	}
}

func TestFallbackName(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	name := FallbackName(now)
	if !strings.HasPrefix(name, "Team ") {
		t.Fatalf("unexpected fallback prefix: %q", name)
	}
	suffix := strings.TrimPrefix(name, "Team ")
	if suffix != strings.ToUpper(suffix) {
		t.Fatalf("expected uppercase base36 suffix, got %q", suffix)
	}
	if name == FallbackName(now.Add(time.Second)) {
		t.Fatal("expected different timestamps to yield different names")
	}
}

func TestTeamLeader(t *testing.T) {
	team := validTeam()
	leader, ok := team.Leader()
	if !ok || leader.UserID != "user-1" {
		t.Fatalf("unexpected leader: ok=%v leader=%+v", ok, leader)
	}

	team.Members = team.Members[1:]
	if _, ok := team.Leader(); ok {
		t.Fatal("expected no leader after removal")
	}
}
