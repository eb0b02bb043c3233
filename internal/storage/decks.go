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

// DeckSummary is a deck with its card count and the number of cards due at
// the instant it was computed.
type DeckSummary struct {
	Deck  domain.Deck
	Cards int
	Due   int
}

// CreateDeck inserts a validated deck and returns it with its ID and timestamps.
func (db *DB) CreateDeck(ctx context.Context, d domain.Deck) (domain.Deck, error) {
	now := db.now()
	d.ID = uuid.NewString()
	d.CreatedAt = now.UTC()
	d.UpdatedAt = now.UTC()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO decks (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, d.ID, d.Name, d.Description, formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to insert deck %q: %w", d.Name, err)
	}
	return d, nil
}

// GetDeck retrieves a deck by its ID.
func (db *DB) GetDeck(ctx context.Context, id string) (domain.Deck, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM decks WHERE id = ?
	`, id)
	d, err := scanDeck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Deck{}, fmt.Errorf("deck %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to get deck %s: %w", id, err)
	}
	return d, nil
}

// ListDecks retrieves all decks, oldest first.
func (db *DB) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM decks ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// DeckSummaries lists every deck with its card count and due count at now.
func (db *DB) DeckSummaries(ctx context.Context, now time.Time) ([]DeckSummary, error) {
	decks, err := db.ListDecks(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]DeckSummary, 0, len(decks))
	for _, d := range decks {
		cards, err := db.ScheduledCards(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, DeckSummary{
			Deck:  d,
			Cards: len(cards),
			Due:   len(sm2.SelectDue(domain.Candidates(cards), now)),
		})
	}
	return summaries, nil
}

// UpdateDeck replaces a deck's name and description.
func (db *DB) UpdateDeck(ctx context.Context, d domain.Deck) (domain.Deck, error) {
	d.UpdatedAt = db.now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE decks SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, d.Name, d.Description, formatTime(d.UpdatedAt), d.ID)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to update deck %s: %w", d.ID, err)
	}
	if err := checkAffected(res, "deck", d.ID); err != nil {
		return domain.Deck{}, err
	}
	return db.GetDeck(ctx, d.ID)
}

// DeleteDeck removes a deck together with its cards, schedules and history.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", id, err)
	}
	return checkAffected(res, "deck", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeck(row rowScanner) (domain.Deck, error) {
	var (
		d                    domain.Deck
		createdAt, updatedAt string
		err                  error
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &createdAt, &updatedAt); err != nil {
		return domain.Deck{}, err
	}
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Deck{}, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Deck{}, err
	}
	return d, nil
}
