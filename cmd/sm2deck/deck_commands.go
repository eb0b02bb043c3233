package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conorfennell/sm2deck/internal/domain"
	"github.com/conorfennell/sm2deck/internal/storage"
)

func newDeckCommand(ctx *commandContext) *cobra.Command {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	deckCmd.AddCommand(newDeckAddCommand(ctx))
	deckCmd.AddCommand(newDeckListCommand(ctx))
	deckCmd.AddCommand(newDeckEditCommand(ctx))
	deckCmd.AddCommand(newDeckRemoveCommand(ctx))
	return deckCmd
}

func newDeckAddCommand(ctx *commandContext) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := domain.NewDeck(args[0], description)
			if err != nil {
				return err
			}
			return ctx.withDB(func(db *storage.DB) error {
				created, err := db.CreateDeck(cmd.Context(), deck)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Created deck %q (%s)\n", created.Name, created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Deck description")
	return cmd
}

func newDeckListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks with card and due counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *storage.DB) error {
				summaries, err := db.DeckSummaries(cmd.Context(), ctx.now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(summaries) == 0 {
					printf(out, "No decks yet. Create one with `sm2deck deck add <name>`.\n")
					return nil
				}
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, []string{
						s.Deck.ID,
						s.Deck.Name,
						truncate(s.Deck.Description, 40),
						strconv.Itoa(s.Cards),
						strconv.Itoa(s.Due),
					})
				}
				printf(out, "%s\n", renderTable(
					[]column{left("ID"), left("Name"), left("Description"), right("Cards"), right("Due")},
					rows,
				))
				return nil
			})
		},
	}
}

func newDeckEditCommand(ctx *commandContext) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "edit <deck-id>",
		Short: "Rename a deck or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *storage.DB) error {
				current, err := db.GetDeck(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					current.Name = name
				}
				if cmd.Flags().Changed("description") {
					current.Description = description
				}
				checked, err := domain.NewDeck(current.Name, current.Description)
				if err != nil {
					return err
				}
				current.Name, current.Description = checked.Name, checked.Description

				updated, err := db.UpdateDeck(cmd.Context(), current)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Updated deck %q (%s)\n", updated.Name, updated.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "New deck name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New deck description")
	return cmd
}

func newDeckRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <deck-id>",
		Short: "Delete a deck with all its cards and review history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *storage.DB) error {
				if err := db.DeleteDeck(cmd.Context(), args[0]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted deck %s\n", args[0])
				return nil
			})
		},
	}
}
