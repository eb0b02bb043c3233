package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/conorfennell/sm2deck/internal/domain"
	"github.com/conorfennell/sm2deck/internal/storage"
)

var now = time.Date(2026, 6, 15, 18, 30, 0, 0, time.UTC)

func daysAgo(n int, hour int) time.Time {
	return time.Date(2026, 6, 15-n, hour, 0, 0, 0, time.UTC)
}

func TestStreak(t *testing.T) {
	testCases := []struct {
		name  string
		times []time.Time
		want  int
	}{
		{"no reviews", nil, 0},
		{"today only", []time.Time{daysAgo(0, 9)}, 1},
		{"several reviews same day", []time.Time{daysAgo(0, 9), daysAgo(0, 10), daysAgo(0, 11)}, 1},
		{"three days running", []time.Time{daysAgo(0, 9), daysAgo(1, 9), daysAgo(2, 23)}, 3},
		{"ending yesterday still counts", []time.Time{daysAgo(1, 9), daysAgo(2, 9)}, 2},
		{"gap breaks the streak", []time.Time{daysAgo(0, 9), daysAgo(1, 9), daysAgo(3, 9), daysAgo(4, 9)}, 2},
		{"last review too old", []time.Time{daysAgo(2, 9), daysAgo(3, 9)}, 0},
		{"unordered input", []time.Time{daysAgo(2, 9), daysAgo(0, 9), daysAgo(1, 9)}, 3},
		{"across month boundary", []time.Time{daysAgo(0, 1), daysAgo(14, 1), daysAgo(15, 1)}, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Streak(tc.times, now); got != tc.want {
				t.Errorf("Expected streak %d, but got %d", tc.want, got)
			}
		})
	}
}

func TestStreakUsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	localNow := time.Date(2026, 6, 15, 8, 0, 0, 0, loc)
	// 22:00 UTC on the 14th is already the 15th at UTC+10.
	review := time.Date(2026, 6, 14, 22, 0, 0, 0, time.UTC)
	if got := Streak([]time.Time{review}, localNow); got != 1 {
		t.Errorf("Expected a review earlier today to count, but got streak %d", got)
	}
}

type fakeSource struct {
	since   []time.Time
	failAvg bool
}

func (f *fakeSource) CountDecks(context.Context) (int, error) { return 2, nil }
func (f *fakeSource) CountCards(context.Context) (int, error) { return 7, nil }
func (f *fakeSource) CountReviews(_ context.Context, since time.Time) (int, error) {
	f.since = append(f.since, since)
	if since.IsZero() {
		return 40, nil
	}
	return 5, nil
}
func (f *fakeSource) AverageEasiness(context.Context) (float64, error) {
	if f.failAvg {
		return 0, errors.New("db gone")
	}
	return 2.4, nil
}
func (f *fakeSource) ReviewTimes(context.Context) ([]time.Time, error) {
	return []time.Time{daysAgo(0, 8), daysAgo(1, 8)}, nil
}
func (f *fakeSource) DeckSummaries(_ context.Context, at time.Time) ([]storage.DeckSummary, error) {
	return []storage.DeckSummary{{Deck: domain.Deck{Name: "A"}, Cards: 7, Due: 3}}, nil
}

func TestCollect(t *testing.T) {
	src := &fakeSource{}
	s, err := Collect(context.Background(), src, now)
	if err != nil {
		t.Fatalf("Collect() returned an unexpected error: %v", err)
	}
	if s.Decks != 2 || s.Cards != 7 || s.ReviewsToday != 5 || s.TotalReviews != 40 || s.Streak != 2 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if s.AverageEasiness != 2.4 || len(s.PerDeck) != 1 || s.PerDeck[0].Due != 3 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if want := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC); !src.since[0].Equal(want) {
		t.Errorf("Expected today's reviews to be counted from %v, but got %v", want, src.since[0])
	}

	if _, err := Collect(context.Background(), &fakeSource{failAvg: true}, now); err == nil {
		t.Error("Expected Collect to fail when the store fails")
	}
}
