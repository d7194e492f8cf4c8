package permanentteam

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// NameAttempts bounds random adjective+noun draws before falling back to a
// time-derived name.
const NameAttempts = 20

var nameAdjectives = []string{
	"Mighty", "Swift", "Royal", "Thunder", "Golden", "Storm", "Brave", "Fierce",
	"Shadow", "Phoenix", "Crimson", "Silver", "Iron", "Electric", "Blazing", "Mystic",
}

var nameNouns = []string{
	"Warriors", "Strikers", "Challengers", "Titans", "Lions", "Eagles", "Panthers", "Kings",
	"Dragons", "Legends", "Falcons", "Wolves", "Hawks", "Knights", "Spartans", "Gladiators",
}

// RandomName draws one adjective+noun candidate. Uniqueness is the caller's
// concern.
func RandomName() string {
	adj := nameAdjectives[rand.IntN(len(nameAdjectives))]
	noun := nameNouns[rand.IntN(len(nameNouns))]

	return adj + " " + noun
}

// FallbackName derives a unique-enough name from the clock when random draws
// keep colliding.
func FallbackName(now time.Time) string {
	return "Team " + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
}
