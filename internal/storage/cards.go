package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/sm2deck/internal/domain"
	"github.com/conorfennell/sm2deck/internal/sm2"
)

const cardColumns = `c.id, c.deck_id, c.front, c.back, c.hash, c.source_id, c.created_at`

// CreateCard inserts a new card and its seed schedule in one transaction.
// The card is due immediately.
func (db *DB) CreateCard(ctx context.Context, c domain.Card, now time.Time) (domain.Card, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = now.UTC()
	seed := sm2.NewCardState(now)

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cards (id, deck_id, front, back, hash, source_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			c.ID,
			c.DeckID,
			c.Front,
			c.Back,
			sql.NullString{String: c.Hash, Valid: c.Hash != ""},
			sql.NullInt64{Int64: c.SourceID, Valid: c.SourceID != 0},
			formatTime(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert card into deck %s: %w", c.DeckID, err)
		}
		return writeState(ctx, tx, c.ID, seed, now)
	})
	if err != nil {
		return domain.Card{}, err
	}
	return c, nil
}

// GetCard retrieves a card by its ID.
func (db *DB) GetCard(ctx context.Context, id string) (domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards c WHERE c.id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Card{}, fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return c, nil
}

// FindCardByHash retrieves an imported card by its content hash within a deck.
// It returns nil if no such card exists.
func (db *DB) FindCardByHash(ctx context.Context, deckID, hash string) (*domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+cardColumns+` FROM cards c WHERE c.deck_id = ? AND c.hash = ?
	`, deckID, hash)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card by hash %s: %w", hash, err)
	}
	return &c, nil
}

// UpdateCard replaces the front and back of a card. Its schedule is kept.
func (db *DB) UpdateCard(ctx context.Context, c domain.Card) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE cards SET front = ?, back = ? WHERE id = ?
	`, c.Front, c.Back, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", c.ID, err)
	}
	return checkAffected(res, "card", c.ID)
}

// DeleteCard removes a card together with its schedule and history.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return checkAffected(res, "card", id)
}

// ListCards retrieves the cards of a deck in store order.
func (db *DB) ListCards(ctx context.Context, deckID string) ([]domain.Card, error) {
	return db.queryCards(ctx, `
		SELECT `+cardColumns+` FROM cards c
		WHERE c.deck_id = ? ORDER BY c.created_at, c.rowid
	`, deckID)
}

// GetCardsBySourceID retrieves all cards imported from a specific source.
func (db *DB) GetCardsBySourceID(ctx context.Context, sourceID int64) ([]domain.Card, error) {
	return db.queryCards(ctx, `
		SELECT `+cardColumns+` FROM cards c
		WHERE c.source_id = ? ORDER BY c.created_at, c.rowid
	`, sourceID)
}

func (db *DB) queryCards(ctx context.Context, query string, args ...any) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ScheduledCards retrieves the cards of a deck in store order, each with its
// schedule. A card without a schedule record comes back with a nil State, and
// a card whose record is malformed comes back with a nil State and StateErr
// set, so one bad row does not hide the rest of the deck.
func (db *DB) ScheduledCards(ctx context.Context, deckID string) ([]domain.ScheduledCard, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+cardColumns+`,
			r.card_id, r.easiness_factor, r.interval_days, r.repetitions, r.next_review, r.last_review
		FROM cards c
		LEFT JOIN card_reviews r ON r.card_id = c.id
		WHERE c.deck_id = ?
		ORDER BY c.created_at, c.rowid
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var cards []domain.ScheduledCard
	for rows.Next() {
		var (
			c          domain.Card
			hash       sql.NullString
			sourceID   sql.NullInt64
			createdAt  string
			stateID    sql.NullString
			easiness   sql.NullFloat64
			interval   sql.NullInt64
			reps       sql.NullInt64
			nextReview sql.NullString
			lastReview sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.DeckID, &c.Front, &c.Back, &hash, &sourceID, &createdAt,
			&stateID, &easiness, &interval, &reps, &nextReview, &lastReview,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled card row for deck %s: %w", deckID, err)
		}
		c.Hash = hash.String
		c.SourceID = sourceID.Int64
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		sc := domain.ScheduledCard{Card: c}
		if stateID.Valid {
			state, err := toState(easiness.Float64, int(interval.Int64), int(reps.Int64), nextReview.String, lastReview)
			if err != nil {
				sc.StateErr = fmt.Errorf("card %s: %w", c.ID, err)
			} else {
				sc.State = &state
			}
		}
		cards = append(cards, sc)
	}
	return cards, rows.Err()
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		c         domain.Card
		hash      sql.NullString
		sourceID  sql.NullInt64
		createdAt string
		err       error
	)
	if err := row.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &hash, &sourceID, &createdAt); err != nil {
		return domain.Card{}, err
	}
	c.Hash = hash.String
	c.SourceID = sourceID.Int64
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Card{}, err
	}
	return c, nil
}
