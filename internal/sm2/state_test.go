package sm2

import (
	"errors"
	"testing"
	"time"
)

func TestNewCardState(t *testing.T) {
	s := NewCardState(day0)
	if s.EasinessFactor() != InitialEasiness || s.Interval() != 0 || s.Repetitions() != 0 {
		t.Errorf("Expected seed {2.5, 0, 0}, but got {%.2f, %d, %d}", s.EasinessFactor(), s.Interval(), s.Repetitions())
	}
	if !s.NextReviewAt().Equal(day0) {
		t.Errorf("Expected seed to be due at %v, but got %v", day0, s.NextReviewAt())
	}
	if _, ok := s.LastReviewedAt(); ok {
		t.Error("Expected a seed state to have no last review")
	}
	if !s.IsDue(day0) {
		t.Error("Expected a seed state to be due immediately")
	}
}

func TestNewScheduleState(t *testing.T) {
	last := day0.AddDate(0, 0, -1)
	testCases := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"seed", Record{EasinessFactor: 2.5, NextReviewAt: day0}, false},
		{"reviewed", Record{EasinessFactor: 1.3, Interval: 6, Repetitions: 2, NextReviewAt: day0, LastReviewedAt: &last}, false},
		{"failed card keeps interval one", Record{EasinessFactor: 1.9, Interval: 1, Repetitions: 0, NextReviewAt: day0}, false},
		{"easiness below floor", Record{EasinessFactor: 1.29, Interval: 1, Repetitions: 1, NextReviewAt: day0}, true},
		{"negative interval", Record{EasinessFactor: 2.5, Interval: -1, NextReviewAt: day0}, true},
		{"negative repetitions", Record{EasinessFactor: 2.5, Repetitions: -2, NextReviewAt: day0}, true},
		{"repetitions without interval", Record{EasinessFactor: 2.5, Interval: 0, Repetitions: 1, NextReviewAt: day0}, true},
		{"missing next review", Record{EasinessFactor: 2.5}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewScheduleState(tc.record)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidState) {
					t.Errorf("Expected ErrInvalidState, but got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewScheduleState() returned an unexpected error: %v", err)
			}
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	last := day0.Add(-36 * time.Hour)
	in := Record{EasinessFactor: 2.36, Interval: 15, Repetitions: 3, NextReviewAt: day0, LastReviewedAt: &last}
	s := mustState(t, in)
	out := s.Record()
	if out.EasinessFactor != in.EasinessFactor || out.Interval != in.Interval || out.Repetitions != in.Repetitions {
		t.Errorf("Expected %+v, but got %+v", in, out)
	}
	if out.LastReviewedAt == nil || !out.LastReviewedAt.Equal(last) {
		t.Errorf("Expected last review %v, but got %v", last, out.LastReviewedAt)
	}
	if NewCardState(day0).Record().LastReviewedAt != nil {
		t.Error("Expected a seed record to have no last review")
	}
}
