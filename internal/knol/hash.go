package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/sm2deck/internal/domain"
)

// Normalize concatenates the card's front and back after cleaning each side.
// It trims whitespace, lowercases, and normalizes line endings for each side
// before joining them.
func Normalize(card domain.Card) string {
	normalizeSide := func(side string) string {
		s := strings.ToLower(side)
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return strings.TrimSpace(s)
	}

	// Joined with a newline so that "ab"+"c" and "a"+"bc" stay distinct.
	return normalizeSide(card.Front) + "\n" + normalizeSide(card.Back)
}

// Hash takes a card, normalizes it, and returns its SHA-256 hash as a hex
// string. Imported cards are identified by this hash, so editing a card in
// its source file replaces it with a new card and a fresh schedule.
func Hash(card domain.Card) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
