package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/sm2deck/internal/domain"
)

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
	separator   = "---"

	// maxLineSize bounds a single line of a card file.
	maxLineSize = 4 * 1024 * 1024
)

type state int

const (
	seeking state = iota
	readingFront
	readingBack
)

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. A card starts at a
// "Q:" line (its front) and takes its back from the following "A:" lines. Both
// sides may span several lines. A card ends at the next "Q:" or at a "---"
// line. Cards missing either side are dropped.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var cards []domain.Card
	var current domain.Card
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		switch currentState {
		case readingFront:
			current.Front = content
		case readingBack:
			current.Back = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Front != "" && current.Back != "" {
			cards = append(cards, current)
		}
		current = domain.Card{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == separator:
			finishCard()
		case strings.HasPrefix(line, frontPrefix):
			if currentState != seeking { // A new question always starts a new card
				finishCard()
			}
			currentState = readingFront
			block = append(block, trimPrefix(line, frontPrefix))
		case strings.HasPrefix(line, backPrefix) && currentState != seeking:
			flushBlock()
			currentState = readingBack
			block = append(block, trimPrefix(line, backPrefix))
		case currentState != seeking:
			block = append(block, line)
		}
	}

	finishCard() // Finish the very last card in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

func trimPrefix(line, prefix string) string {
	content := line[len(prefix):]
	return strings.TrimPrefix(content, " ")
}
