package main

import (
	"github.com/spf13/cobra"

	"github.com/conorfennell/sm2deck/internal/config"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "sm2deck",
		Short:         "Spaced-repetition flashcards scheduled with SM-2",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newDeckCommand(ctx))
	rootCmd.AddCommand(newCardCommand(ctx))
	rootCmd.AddCommand(newStudyCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newSourceCommand(ctx))
	rootCmd.AddCommand(newSyncCommand(ctx))

	return rootCmd
}
