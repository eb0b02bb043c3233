package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/sm2deck/internal/storage"
)

// Source is the read side of the store that statistics are computed from.
type Source interface {
	CountDecks(ctx context.Context) (int, error)
	CountCards(ctx context.Context) (int, error)
	CountReviews(ctx context.Context, since time.Time) (int, error)
	AverageEasiness(ctx context.Context) (float64, error)
	ReviewTimes(ctx context.Context) ([]time.Time, error)
	DeckSummaries(ctx context.Context, now time.Time) ([]storage.DeckSummary, error)
}

// Summary is an overview of study activity at a point in time.
type Summary struct {
	Decks           int
	Cards           int
	ReviewsToday    int
	TotalReviews    int
	AverageEasiness float64
	Streak          int
	PerDeck         []storage.DeckSummary
}

// Collect gathers the summary at now. "Today" starts at midnight in now's
// location.
func Collect(ctx context.Context, src Source, now time.Time) (Summary, error) {
	var (
		s   Summary
		err error
	)
	if s.Decks, err = src.CountDecks(ctx); err != nil {
		return Summary{}, fmt.Errorf("count decks: %w", err)
	}
	if s.Cards, err = src.CountCards(ctx); err != nil {
		return Summary{}, fmt.Errorf("count cards: %w", err)
	}
	if s.ReviewsToday, err = src.CountReviews(ctx, startOfDay(now)); err != nil {
		return Summary{}, fmt.Errorf("count today's reviews: %w", err)
	}
	if s.TotalReviews, err = src.CountReviews(ctx, time.Time{}); err != nil {
		return Summary{}, fmt.Errorf("count reviews: %w", err)
	}
	if s.AverageEasiness, err = src.AverageEasiness(ctx); err != nil {
		return Summary{}, fmt.Errorf("average easiness: %w", err)
	}

	times, err := src.ReviewTimes(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("review times: %w", err)
	}
	s.Streak = Streak(times, now)

	if s.PerDeck, err = src.DeckSummaries(ctx, now); err != nil {
		return Summary{}, fmt.Errorf("deck summaries: %w", err)
	}
	return s, nil
}

// Streak counts consecutive calendar days with at least one review, ending
// today or yesterday. Days are taken in now's location. A streak whose last
// review day is before yesterday is broken and counts as zero.
func Streak(times []time.Time, now time.Time) int {
	const layout = "2006-01-02"
	days := make(map[string]bool, len(times))
	for _, t := range times {
		days[t.In(now.Location()).Format(layout)] = true
	}

	day := startOfDay(now)
	if !days[day.Format(layout)] {
		day = day.AddDate(0, 0, -1)
		if !days[day.Format(layout)] {
			return 0
		}
	}

	streak := 0
	for days[day.Format(layout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
