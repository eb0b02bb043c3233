package sm2

import "time"

// Candidate pairs a card identifier with its schedule. State is nil when the
// review-state store has no record for the card.
type Candidate struct {
	ID    string
	State *ScheduleState
}

// SelectDue returns the IDs of the cards that may be reviewed at now, in
// input order. A card is due when its next review instant is not after now.
// Cards without a schedule are never due.
//
// The result is a snapshot: a study session selects once at start and works
// through that list, so grading a card never changes which other cards
// belong to the session.
func SelectDue(cards []Candidate, now time.Time) []string {
	var due []string
	for _, c := range cards {
		if c.State == nil {
			continue
		}
		if c.State.IsDue(now) {
			due = append(due, c.ID)
		}
	}
	return due
}

// MissingState returns the IDs of cards that have no schedule record.
func MissingState(cards []Candidate) []string {
	var missing []string
	for _, c := range cards {
		if c.State == nil {
			missing = append(missing, c.ID)
		}
	}
	return missing
}
