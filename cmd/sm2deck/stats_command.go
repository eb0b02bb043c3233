package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conorfennell/sm2deck/internal/stats"
	"github.com/conorfennell/sm2deck/internal/storage"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show review statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *storage.DB) error {
				summary, err := stats.Collect(cmd.Context(), db, ctx.now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				average := "-"
				if summary.Cards > 0 {
					average = fmt.Sprintf("%.2f", summary.AverageEasiness)
				}
				printf(out, "%s\n", renderTable(
					[]column{left("Metric"), right("Value")},
					[][]string{
						{"Decks", strconv.Itoa(summary.Decks)},
						{"Cards", strconv.Itoa(summary.Cards)},
						{"Reviews today", strconv.Itoa(summary.ReviewsToday)},
						{"Total reviews", strconv.Itoa(summary.TotalReviews)},
						{"Average easiness", average},
						{"Streak (days)", strconv.Itoa(summary.Streak)},
					},
				))

				if len(summary.PerDeck) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(summary.PerDeck))
				for _, d := range summary.PerDeck {
					rows = append(rows, []string{d.Deck.Name, strconv.Itoa(d.Cards), strconv.Itoa(d.Due)})
				}
				printf(out, "%s\n", renderTable(
					[]column{left("Deck"), right("Cards"), right("Due")},
					rows,
				))
				return nil
			})
		},
	}
}
