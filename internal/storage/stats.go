package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CountDecks returns the number of decks.
func (db *DB) CountDecks(ctx context.Context) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM decks`)
}

// CountCards returns the number of cards across all decks.
func (db *DB) CountCards(ctx context.Context) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM cards`)
}

// CountReviews returns the number of review events at or after since. A zero
// since counts every review.
func (db *DB) CountReviews(ctx context.Context, since time.Time) (int, error) {
	if since.IsZero() {
		return db.count(ctx, `SELECT COUNT(*) FROM review_history`)
	}
	return db.count(ctx, `SELECT COUNT(*) FROM review_history WHERE reviewed_at >= ?`, formatTime(since))
}

// AverageEasiness returns the mean easiness factor over all schedule records,
// or 0 when there are none.
func (db *DB) AverageEasiness(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	if err := db.conn.QueryRowContext(ctx, `SELECT AVG(easiness_factor) FROM card_reviews`).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average easiness: %w", err)
	}
	return avg.Float64, nil
}

// ReviewTimes returns the instants of every review event, newest first.
func (db *DB) ReviewTimes(ctx context.Context) ([]time.Time, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT reviewed_at FROM review_history ORDER BY reviewed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get review times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan review time: %w", err)
		}
		t, err := parseTime(s)
		if err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (db *DB) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}
