package sm2

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// MinEasiness is the floor applied to every easiness factor.
	MinEasiness = 1.3
	// InitialEasiness is the easiness factor of a card that was never reviewed.
	InitialEasiness = 2.5
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Record is the persisted form of a ScheduleState, as stored by the
// review-state store. Use NewScheduleState to turn it back into a state.
type Record struct {
	EasinessFactor float64   `validate:"gte=1.3"`
	Interval       int       `validate:"gte=0"`
	Repetitions    int       `validate:"gte=0"`
	NextReviewAt   time.Time `validate:"required"`
	LastReviewedAt *time.Time
}

// ScheduleState is the spaced-repetition bookkeeping of one card.
// The zero value is not a valid state; build one with NewCardState or
// NewScheduleState.
type ScheduleState struct {
	easiness       float64
	interval       int
	repetitions    int
	nextReviewAt   time.Time
	lastReviewedAt time.Time
}

// NewCardState returns the seed state of a freshly created card. The card is
// due immediately.
func NewCardState(now time.Time) ScheduleState {
	return ScheduleState{
		easiness:     InitialEasiness,
		nextReviewAt: now,
	}
}

// NewScheduleState validates a persisted record and converts it to a state.
func NewScheduleState(r Record) (ScheduleState, error) {
	if err := validate.Struct(r); err != nil {
		return ScheduleState{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if r.Repetitions >= 1 && r.Interval < 1 {
		return ScheduleState{}, fmt.Errorf("%w: interval %d with %d repetitions", ErrInvalidState, r.Interval, r.Repetitions)
	}

	s := ScheduleState{
		easiness:     r.EasinessFactor,
		interval:     r.Interval,
		repetitions:  r.Repetitions,
		nextReviewAt: r.NextReviewAt,
	}
	if r.LastReviewedAt != nil {
		s.lastReviewedAt = *r.LastReviewedAt
	}
	return s, nil
}

// Record returns the persisted form of s.
func (s ScheduleState) Record() Record {
	r := Record{
		EasinessFactor: s.easiness,
		Interval:       s.interval,
		Repetitions:    s.repetitions,
		NextReviewAt:   s.nextReviewAt,
	}
	if !s.lastReviewedAt.IsZero() {
		t := s.lastReviewedAt
		r.LastReviewedAt = &t
	}
	return r
}

// EasinessFactor is the current easiness factor, never below MinEasiness.
func (s ScheduleState) EasinessFactor() float64 { return s.easiness }

// Interval is the current inter-review interval in days.
func (s ScheduleState) Interval() int { return s.interval }

// Repetitions counts consecutive successful reviews since the last failure.
func (s ScheduleState) Repetitions() int { return s.repetitions }

// NextReviewAt is the instant from which the card is due.
func (s ScheduleState) NextReviewAt() time.Time { return s.nextReviewAt }

// LastReviewedAt returns the instant of the last review, if there was one.
func (s ScheduleState) LastReviewedAt() (time.Time, bool) {
	return s.lastReviewedAt, !s.lastReviewedAt.IsZero()
}

// ReviewedAt returns a copy of s stamped with the review instant. Callers
// persisting the output of Advance must stamp it with the same now.
func (s ScheduleState) ReviewedAt(now time.Time) ScheduleState {
	s.lastReviewedAt = now
	return s
}

// IsDue reports whether the card may be reviewed at now.
func (s ScheduleState) IsDue(now time.Time) bool {
	return !s.nextReviewAt.After(now)
}
