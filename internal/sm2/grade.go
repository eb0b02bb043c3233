package sm2

import (
	"fmt"
	"strconv"
	"strings"
)

// Grade is the user's self-assessed recall quality for a review.
// 0 is a total blackout, 5 is perfect recall.
type Grade int

const (
	Blackout  Grade = 0 // Not remembered at all.
	Wrong     Grade = 1 // Wrong, but the answer felt familiar.
	AlmostHad Grade = 2 // Wrong, but nearly remembered.
	Hard      Grade = 3 // Correct with serious difficulty.
	Good      Grade = 4 // Correct after some hesitation.
	Perfect   Grade = 5 // Correct and immediate.
)

// passing is the lowest grade treated as a successful recall.
const passing = Hard

var gradeDescriptions = [...]string{
	Blackout:  "Complete blackout, not remembered at all",
	Wrong:     "Wrong, but something felt familiar",
	AlmostHad: "Wrong, but almost remembered",
	Hard:      "Correct, with difficulty",
	Good:      "Correct, after some thought",
	Perfect:   "Correct, immediately and easily",
}

// IsValid reports whether g is in [0, 5].
func (g Grade) IsValid() bool {
	return g >= Blackout && g <= Perfect
}

// Passed reports whether g counts as a successful review.
func (g Grade) Passed() bool {
	return g >= passing
}

func (g Grade) String() string {
	return fmt.Sprintf("Grade(%d)", int(g))
}

// Description returns a short human-readable label, or "" for invalid grades.
func (g Grade) Description() string {
	if !g.IsValid() {
		return ""
	}
	return gradeDescriptions[g]
}

// ParseGrade converts user input such as "4" into a Grade.
func ParseGrade(s string) (Grade, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	g := Grade(n)
	if !g.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, n)
	}
	return g, nil
}

// Grades returns every valid grade in ascending order.
func Grades() []Grade {
	return []Grade{Blackout, Wrong, AlmostHad, Hard, Good, Perfect}
}
