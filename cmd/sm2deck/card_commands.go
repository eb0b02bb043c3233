package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conorfennell/sm2deck/internal/domain"
	"github.com/conorfennell/sm2deck/internal/storage"
)

func newCardCommand(ctx *commandContext) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage the cards of a deck",
	}
	cardCmd.AddCommand(newCardAddCommand(ctx))
	cardCmd.AddCommand(newCardListCommand(ctx))
	cardCmd.AddCommand(newCardEditCommand(ctx))
	cardCmd.AddCommand(newCardRemoveCommand(ctx))
	return cardCmd
}

func newCardAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <deck-id> <front> <back>",
		Short: "Add a card to a deck; it is due immediately",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := domain.NewCard(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return ctx.withDB(func(db *storage.DB) error {
				if _, err := db.GetDeck(cmd.Context(), card.DeckID); err != nil {
					return err
				}
				created, err := db.CreateCard(cmd.Context(), card, ctx.now())
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Created card %s\n", created.ID)
				return nil
			})
		},
	}
}

func newCardListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <deck-id>",
		Short: "List the cards of a deck with their schedules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *storage.DB) error {
				if _, err := db.GetDeck(cmd.Context(), args[0]); err != nil {
					return err
				}
				cards, err := db.ScheduledCards(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(cards) == 0 {
					printf(out, "No cards in this deck.\n")
					return nil
				}

				now := ctx.now()
				rows := make([][]string, 0, len(cards))
				for _, c := range cards {
					row := []string{c.Card.ID, truncate(c.Card.Front, 30), truncate(c.Card.Back, 30)}
					switch {
					case c.StateErr != nil:
						row = append(row, "-", "-", "-", "invalid")
					case c.State == nil:
						row = append(row, "-", "-", "-", "missing")
					default:
						row = append(row,
							fmt.Sprintf("%.2f", c.State.EasinessFactor()),
							strconv.Itoa(c.State.Interval()),
							strconv.Itoa(c.State.Repetitions()),
							formatDue(c.State.NextReviewAt(), now),
						)
					}
					rows = append(rows, row)
				}
				printf(out, "%s\n", renderTable(
					[]column{left("ID"), left("Front"), left("Back"), right("EF"), right("Interval"), right("Reps"), left("Due")},
					rows,
				))
				return nil
			})
		},
	}
}

func newCardEditCommand(ctx *commandContext) *cobra.Command {
	var front, back string
	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Change the front or back of a card, keeping its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *storage.DB) error {
				current, err := db.GetCard(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("front") {
					current.Front = front
				}
				if cmd.Flags().Changed("back") {
					current.Back = back
				}
				checked, err := domain.NewCard(current.DeckID, current.Front, current.Back)
				if err != nil {
					return err
				}
				current.Front, current.Back = checked.Front, checked.Back

				if err := db.UpdateCard(cmd.Context(), current); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Updated card %s\n", current.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&front, "front", "f", "", "New front text")
	cmd.Flags().StringVarP(&back, "back", "b", "", "New back text")
	return cmd
}

func newCardRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <card-id>",
		Short: "Delete a card with its schedule and review history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *storage.DB) error {
				if err := db.DeleteCard(cmd.Context(), args[0]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted card %s\n", args[0])
				return nil
			})
		},
	}
}
