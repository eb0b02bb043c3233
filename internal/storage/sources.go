package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	SourceLocal = "local"
	SourceGit   = "git"
)

// Source represents a card source, either a local path or a Git URL, whose
// cards are imported into one deck.
type Source struct {
	ID          int64
	Path        string
	Type        string
	DeckID      string
	LastScanned *time.Time
}

// InsertSource inserts a new source and returns its ID.
func (db *DB) InsertSource(ctx context.Context, path, sourceType, deckID string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO sources (path, type, deck_id)
		VALUES (?, ?, ?)
	`, path, sourceType, deckID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. It returns nil if the
// source does not exist.
func (db *DB) FindSourceByPath(ctx context.Context, path string) (*Source, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, path, type, deck_id, last_scanned
		FROM sources WHERE path = ?
	`, path)

	s, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Source not found
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetAllSources retrieves all stored sources.
func (db *DB) GetAllSources(ctx context.Context) ([]Source, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, path, type, deck_id, last_scanned
		FROM sources ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// UpdateSourceLastScanned updates the last_scanned timestamp for a source.
func (db *DB) UpdateSourceLastScanned(ctx context.Context, sourceID int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE sources SET last_scanned = ? WHERE id = ?
	`, formatTime(at), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source ID %d: %w", sourceID, err)
	}
	return nil
}

// DeleteSource removes a source and the cards imported from it.
func (db *DB) DeleteSource(ctx context.Context, sourceID int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, sourceID)
	if err != nil {
		return fmt.Errorf("failed to delete source ID %d: %w", sourceID, err)
	}
	return checkAffected(res, "source", strconv.FormatInt(sourceID, 10))
}

func scanSource(row rowScanner) (Source, error) {
	var (
		s           Source
		lastScanned sql.NullString
		err         error
	)
	if err := row.Scan(&s.ID, &s.Path, &s.Type, &s.DeckID, &lastScanned); err != nil {
		return Source{}, err
	}
	if s.LastScanned, err = parseNullTime(lastScanned); err != nil {
		return Source{}, err
	}
	return s, nil
}
