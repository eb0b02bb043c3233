package sm2

import (
	"fmt"
	"math"
	"time"
)

// Advance computes the schedule that follows a review of grade g at now.
//
// A failing grade (below 3) restarts the learning sequence with a one day
// interval. Passing grades use intervals of 1 and 6 days for the first two
// successes and round(interval × easiness) afterwards. Rounding is math.Round,
// so halves round away from zero.
//
// The easiness factor is adjusted for every grade, passing or not, and never
// drops below MinEasiness. There is no upper bound on either easiness or
// interval.
//
// The next review lands interval calendar days after now, in now's location,
// so a day across a DST change is not 24 hours. The returned state keeps the
// previous LastReviewedAt; stamp it with ReviewedAt(now) before persisting.
func Advance(state ScheduleState, g Grade, now time.Time) (ScheduleState, error) {
	if !g.IsValid() {
		return ScheduleState{}, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}

	next := state
	if g.Passed() {
		switch state.repetitions {
		case 0:
			next.interval = 1
		case 1:
			next.interval = 6
		default:
			next.interval = int(math.Round(float64(state.interval) * state.easiness))
		}
		next.repetitions = state.repetitions + 1
	} else {
		next.repetitions = 0
		next.interval = 1
	}

	next.easiness = nextEasiness(state.easiness, g)
	next.nextReviewAt = now.AddDate(0, 0, next.interval)
	return next, nil
}

// nextEasiness applies the SM-2 ease adjustment:
// EF' = EF + (0.1 - (5-g) * (0.08 + (5-g) * 0.02)), floored at MinEasiness.
func nextEasiness(ef float64, g Grade) float64 {
	q := float64(Perfect - g)
	ef += 0.1 - q*(0.08+q*0.02)
	if ef < MinEasiness {
		return MinEasiness
	}
	return ef
}
