package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/conorfennell/sm2deck/internal/sm2"
	"github.com/conorfennell/sm2deck/internal/storage"
	"github.com/conorfennell/sm2deck/internal/study"
)

var errQuit = errors.New("quit")

func newStudyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "study <deck-id>",
		Short: "Review the cards of a deck that are due now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lock := flock.New(ctx.config.DB + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("lock %s: %w", lock.Path(), err)
			}
			if !locked {
				return fmt.Errorf("another study session is using %s", ctx.config.DB)
			}
			defer func() { _ = lock.Unlock() }()

			return ctx.withDB(func(db *storage.DB) error {
				deck, err := db.GetDeck(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				session, err := study.Start(cmd.Context(), db, deck.ID, ctx.now(), ctx.logger)
				if err != nil {
					return err
				}
				return runStudy(cmd, ctx, deck.Name, session)
			})
		},
	}
}

func runStudy(cmd *cobra.Command, ctx *commandContext, deckName string, session *study.Session) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	colorize := shouldColorize(out)

	if session.Total() == 0 {
		printf(out, "No cards due in %q.\n", deckName)
		return nil
	}
	printf(out, "Studying %q: %d card(s) due.\n", deckName, session.Total())

	for {
		card, ok := session.Current()
		if !ok {
			break
		}
		position := session.Total() - session.Remaining() + 1
		printf(out, "\n[%d/%d] %s\n%s\n", position, session.Total(), emphasize("Front:", colorize), card.Front)

		if _, err := prompt(out, in, "Press Enter to show the answer (q to quit) "); err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		printf(out, "%s\n%s\n\n", emphasize("Back:", colorize), card.Back)
		for _, g := range sm2.Grades() {
			printf(out, "  %d  %s\n", int(g), g.Description())
		}

		grade, err := readGrade(out, in)
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		res, err := session.Grade(cmd.Context(), grade, ctx.now())
		if err != nil {
			return err
		}
		printf(out, "Next review %s (interval %d day(s), easiness %.2f)\n",
			res.State.NextReviewAt().Local().Format("2006-01-02"), res.State.Interval(), res.State.EasinessFactor())
	}

	printf(out, "\nReviewed %d of %d card(s).\n", len(session.Reviewed()), session.Total())
	return nil
}

// readGrade prompts until the user enters a valid grade or quits.
func readGrade(out io.Writer, in *bufio.Reader) (sm2.Grade, error) {
	for {
		line, err := prompt(out, in, "Grade [0-5]: ")
		if err != nil {
			return 0, err
		}
		grade, err := sm2.ParseGrade(line)
		if err == nil {
			return grade, nil
		}
		printf(out, "Please enter a number from 0 to 5, or q to quit.\n")
	}
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	printf(out, "%s", label)
	line, err := in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, "q") {
		return "", errQuit
	}
	return line, nil
}
