// Package study drives a review session over one deck.
//
// A session takes its due set once, when it starts. Cards that become due
// while the session runs are left for the next session, and grading a card
// never changes which other cards the session presents.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/sm2deck/internal/domain"
	"github.com/conorfennell/sm2deck/internal/sm2"
)

// ErrSessionComplete is returned when grading after the last due card.
var ErrSessionComplete = errors.New("study session complete")

// Store is the card and review-state store a session reads from and writes to.
// RecordReview must load, advance and persist the card's schedule atomically
// and append the history entry.
type Store interface {
	ScheduledCards(ctx context.Context, deckID string) ([]domain.ScheduledCard, error)
	RecordReview(ctx context.Context, cardID string, grade sm2.Grade, now time.Time) (sm2.ScheduleState, error)
}

// Session is the state of one pass over a deck's due cards. It is not safe
// for concurrent use.
type Session struct {
	store    Store
	deckID   string
	due      []domain.Card
	pos      int
	reviewed []Result
	logger   *slog.Logger
}

// Result is the outcome of grading one card.
type Result struct {
	Card  domain.Card
	Grade sm2.Grade
	State sm2.ScheduleState
}

// Start loads the deck and freezes the set of cards due at now.
func Start(ctx context.Context, store Store, deckID string, now time.Time, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cards, err := store.ScheduledCards(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("load deck %s: %w", deckID, err)
	}

	byID := make(map[string]domain.ScheduledCard, len(cards))
	for _, c := range cards {
		byID[c.Card.ID] = c
	}

	candidates := domain.Candidates(cards)
	for _, id := range sm2.MissingState(candidates) {
		if err := byID[id].StateErr; err != nil {
			logger.Warn("Card has an invalid schedule, skipping", "deck_id", deckID, "card_id", id, "error", err)
			continue
		}
		logger.Warn("Card has no schedule, skipping", "deck_id", deckID, "card_id", id)
	}

	dueIDs := sm2.SelectDue(candidates, now)
	due := make([]domain.Card, 0, len(dueIDs))
	for _, id := range dueIDs {
		due = append(due, byID[id].Card)
	}

	logger.Info("Study session started", "deck_id", deckID, "cards", len(cards), "due", len(due))
	return &Session{
		store:  store,
		deckID: deckID,
		due:    due,
		logger: logger,
	}, nil
}

// Current returns the card to present next. ok is false once every due card
// has been graded.
func (s *Session) Current() (card domain.Card, ok bool) {
	if s.Done() {
		return domain.Card{}, false
	}
	return s.due[s.pos], true
}

// Grade records the grade for the current card at now and moves on. If the
// grade is invalid or the store fails, the session stays on the same card.
func (s *Session) Grade(ctx context.Context, grade sm2.Grade, now time.Time) (Result, error) {
	card, ok := s.Current()
	if !ok {
		return Result{}, ErrSessionComplete
	}
	if !grade.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", sm2.ErrInvalidGrade, int(grade))
	}

	state, err := s.store.RecordReview(ctx, card.ID, grade, now)
	if err != nil {
		return Result{}, fmt.Errorf("record review of card %s: %w", card.ID, err)
	}

	res := Result{Card: card, Grade: grade, State: state}
	s.reviewed = append(s.reviewed, res)
	s.pos++
	s.logger.Debug("Card graded",
		"card_id", card.ID,
		"grade", int(grade),
		"interval", state.Interval(),
		"repetitions", state.Repetitions(),
		"easiness", state.EasinessFactor(),
	)
	if s.Done() {
		s.logger.Info("Study session complete", "deck_id", s.deckID, "reviewed", len(s.reviewed))
	}
	return res, nil
}

// Total is the size of the frozen due set.
func (s *Session) Total() int { return len(s.due) }

// Remaining is the number of due cards not yet graded.
func (s *Session) Remaining() int { return len(s.due) - s.pos }

// Done reports whether every due card has been graded.
func (s *Session) Done() bool { return s.pos >= len(s.due) }

// Reviewed returns the results recorded so far, in grading order.
func (s *Session) Reviewed() []Result {
	out := make([]Result, len(s.reviewed))
	copy(out, s.reviewed)
	return out
}
