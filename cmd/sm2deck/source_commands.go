package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conorfennell/sm2deck/internal/storage"
	"github.com/conorfennell/sm2deck/internal/sync"
)

func newSourceCommand(ctx *commandContext) *cobra.Command {
	sourceCmd := &cobra.Command{
		Use:   "source",
		Short: "Manage the local directories and git repositories cards are imported from",
	}
	sourceCmd.AddCommand(newSourceAddCommand(ctx))
	sourceCmd.AddCommand(newSourceListCommand(ctx))
	sourceCmd.AddCommand(newSourceRemoveCommand(ctx))
	return sourceCmd
}

func newSourceAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <deck-id> <path-or-git-url>",
		Short: "Import a directory or git repository into a deck on every sync",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, path := args[0], args[1]
			sourceType := sync.SourceType(path)
			if sourceType == storage.SourceLocal {
				abs, err := filepath.Abs(path)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", path, err)
				}
				path = abs
			}

			return ctx.withDB(func(db *storage.DB) error {
				if _, err := db.GetDeck(cmd.Context(), deckID); err != nil {
					return err
				}
				existing, err := db.FindSourceByPath(cmd.Context(), path)
				if err != nil {
					return err
				}
				if existing != nil {
					return fmt.Errorf("source %s already exists (id %d)", path, existing.ID)
				}
				id, err := db.InsertSource(cmd.Context(), path, sourceType, deckID)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Added %s source %s (id %d)\n", sourceType, path, id)
				return nil
			})
		},
	}
}

func newSourceListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List card sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *storage.DB) error {
				sources, err := db.GetAllSources(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sources) == 0 {
					printf(out, "No sources yet.\n")
					return nil
				}
				rows := make([][]string, 0, len(sources))
				for _, s := range sources {
					scanned := "never"
					if s.LastScanned != nil {
						scanned = s.LastScanned.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Type, s.Path, s.DeckID, scanned})
				}
				printf(out, "%s\n", renderTable(
					[]column{right("ID"), left("Type"), left("Path"), left("Deck"), left("Last scanned")},
					rows,
				))
				return nil
			})
		},
	}
}

func newSourceRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <source-id>",
		Short: "Remove a source together with the cards imported from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid source id %q", args[0])
			}
			return ctx.withDB(func(db *storage.DB) error {
				if err := db.DeleteSource(cmd.Context(), id); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Removed source %d\n", id)
				return nil
			})
		},
	}
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import new cards from every source and drop cards whose content is gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sync.Options{
				ReposDir: ctx.config.ReposDir,
				Logger:   ctx.logger,
			}
			if !quiet {
				opts.Progress = cmd.ErrOrStderr()
			}
			return ctx.withDB(func(db *storage.DB) error {
				report, err := sync.Run(cmd.Context(), db, ctx.now(), opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printf(out, "Synced %d source(s): %d card(s) added, %d removed\n", report.Sources, report.Added, report.Removed)
				for _, e := range report.Errors {
					printf(out, "  error: %v\n", e)
				}
				if len(report.Errors) > 0 {
					return fmt.Errorf("%d source(s) failed to sync", len(report.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide git progress output")
	return cmd
}
