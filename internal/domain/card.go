package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/sm2deck/internal/sm2"
)

var (
	ErrInvalidDeck = errors.New("invalid deck")
	ErrInvalidCard = errors.New("invalid card")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Deck is a named collection of cards.
type Deck struct {
	ID          string
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewDeck trims and validates the user-supplied deck fields.
func NewDeck(name, description string) (Deck, error) {
	d := Deck{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := validate.Struct(d); err != nil {
		return Deck{}, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
	}
	return d, nil
}

// Card represents a single front/back entry. Hash is set only for cards
// imported from a source and identifies their content.
type Card struct {
	ID        string
	DeckID    string `validate:"required"`
	Front     string `validate:"required"`
	Back      string `validate:"required"`
	Hash      string
	SourceID  int64
	CreatedAt time.Time
}

// NewCard trims and validates the user-supplied card fields.
func NewCard(deckID, front, back string) (Card, error) {
	c := Card{
		DeckID: deckID,
		Front:  strings.TrimSpace(front),
		Back:   strings.TrimSpace(back),
	}
	if err := validate.Struct(c); err != nil {
		return Card{}, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	return c, nil
}

// ReviewLog records a single review event for a card. It is written once
// per grade and only read for statistics.
type ReviewLog struct {
	CardID     string
	Grade      sm2.Grade
	ReviewedAt time.Time
}

// ScheduledCard is a card together with its schedule. State is nil when the
// store holds no schedule record for the card, or holds one that fails
// validation; StateErr then says why.
type ScheduledCard struct {
	Card     Card
	State    *sm2.ScheduleState
	StateErr error
}

// Candidates converts scheduled cards for due-set selection, keeping order.
func Candidates(cards []ScheduledCard) []sm2.Candidate {
	out := make([]sm2.Candidate, len(cards))
	for i, c := range cards {
		out[i] = sm2.Candidate{ID: c.Card.ID, State: c.State}
	}
	return out
}
