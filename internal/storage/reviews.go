package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/sm2deck/internal/domain"
	"github.com/conorfennell/sm2deck/internal/sm2"
)

// GetScheduleState retrieves the schedule record of a card.
func (db *DB) GetScheduleState(ctx context.Context, cardID string) (sm2.ScheduleState, error) {
	return readState(ctx, db.conn, cardID)
}

// RecordReview grades a card at now. Loading the schedule, advancing it and
// writing it back happen in one transaction together with the history entry,
// so concurrent reviews of the same card cannot lose an update.
func (db *DB) RecordReview(ctx context.Context, cardID string, grade sm2.Grade, now time.Time) (sm2.ScheduleState, error) {
	var next sm2.ScheduleState
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		prior, err := readState(ctx, tx, cardID)
		if err != nil {
			return err
		}
		advanced, err := sm2.Advance(prior, grade, now)
		if err != nil {
			return fmt.Errorf("card %s: %w", cardID, err)
		}
		next = advanced.ReviewedAt(now)

		if err := writeState(ctx, tx, cardID, next, now); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO review_history (card_id, quality, reviewed_at)
			VALUES (?, ?, ?)
		`, cardID, int(grade), formatTime(now))
		if err != nil {
			return fmt.Errorf("failed to append review history for card %s: %w", cardID, err)
		}
		return nil
	})
	if err != nil {
		return sm2.ScheduleState{}, err
	}
	return next, nil
}

// ReviewHistory retrieves the review log of a card, oldest first.
func (db *DB) ReviewHistory(ctx context.Context, cardID string) ([]domain.ReviewLog, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT card_id, quality, reviewed_at FROM review_history
		WHERE card_id = ? ORDER BY id
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review history for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var logs []domain.ReviewLog
	for rows.Next() {
		var (
			l          domain.ReviewLog
			quality    int
			reviewedAt string
		)
		if err := rows.Scan(&l.CardID, &quality, &reviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review history row: %w", err)
		}
		l.Grade = sm2.Grade(quality)
		if l.ReviewedAt, err = parseTime(reviewedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readState(ctx context.Context, q querier, cardID string) (sm2.ScheduleState, error) {
	var (
		exists     int
		easiness   sql.NullFloat64
		interval   sql.NullInt64
		reps       sql.NullInt64
		nextReview sql.NullString
		lastReview sql.NullString
		stateID    sql.NullString
	)
	row := q.QueryRowContext(ctx, `
		SELECT 1, r.card_id, r.easiness_factor, r.interval_days, r.repetitions, r.next_review, r.last_review
		FROM cards c
		LEFT JOIN card_reviews r ON r.card_id = c.id
		WHERE c.id = ?
	`, cardID)
	err := row.Scan(&exists, &stateID, &easiness, &interval, &reps, &nextReview, &lastReview)
	if errors.Is(err, sql.ErrNoRows) {
		return sm2.ScheduleState{}, fmt.Errorf("card %s: %w", cardID, ErrNotFound)
	}
	if err != nil {
		return sm2.ScheduleState{}, fmt.Errorf("failed to read schedule for card %s: %w", cardID, err)
	}
	if !stateID.Valid {
		return sm2.ScheduleState{}, fmt.Errorf("card %s: %w", cardID, ErrMissingState)
	}

	state, err := toState(easiness.Float64, int(interval.Int64), int(reps.Int64), nextReview.String, lastReview)
	if err != nil {
		return sm2.ScheduleState{}, fmt.Errorf("card %s: %w", cardID, err)
	}
	return state, nil
}

func writeState(ctx context.Context, tx *sql.Tx, cardID string, s sm2.ScheduleState, now time.Time) error {
	r := s.Record()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO card_reviews (card_id, easiness_factor, interval_days, repetitions, next_review, last_review, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			easiness_factor = excluded.easiness_factor,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			next_review = excluded.next_review,
			last_review = excluded.last_review,
			updated_at = excluded.updated_at
	`,
		cardID,
		r.EasinessFactor,
		r.Interval,
		r.Repetitions,
		formatTime(r.NextReviewAt),
		nullTime(r.LastReviewedAt),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to write schedule for card %s: %w", cardID, err)
	}
	return nil
}

// toState rebuilds a validated schedule from stored columns.
func toState(easiness float64, interval, reps int, nextReview string, lastReview sql.NullString) (sm2.ScheduleState, error) {
	next, err := parseTime(nextReview)
	if err != nil {
		return sm2.ScheduleState{}, err
	}
	last, err := parseNullTime(lastReview)
	if err != nil {
		return sm2.ScheduleState{}, err
	}
	return sm2.NewScheduleState(sm2.Record{
		EasinessFactor: easiness,
		Interval:       interval,
		Repetitions:    reps,
		NextReviewAt:   next,
		LastReviewedAt: last,
	})
}
