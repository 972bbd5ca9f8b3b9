package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tvshelf/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var batchID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent relocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				var (
					moves []history.Move
					err   error
				)
				if strings.TrimSpace(batchID) != "" {
					moves, err = store.MovesForBatch(cmd.Context(), strings.TrimSpace(batchID))
				} else {
					moves, err = store.ListMoves(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(moves) == 0 {
					fmt.Fprintln(out, "No relocations recorded")
					return nil
				}
				counts, err := store.OutcomeCounts(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, historyTable(moves, counts, shouldColorize(out)).render())
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of moves to list")
	cmd.Flags().StringVar(&batchID, "batch", "", "Only list moves from this batch")
	return cmd
}

func historyTable(moves []history.Move, counts map[string]int, colorize bool) tableView {
	rows := make([][]string, 0, len(moves))
	for _, move := range moves {
		destination := move.Destination
		if move.Error != "" && destination == "" {
			destination = move.Error
		}
		rows = append(rows, []string{
			humanize.Time(move.FinishedAt),
			shortBatch(move.BatchID),
			renderState(move.Outcome, colorize),
			humanize.Bytes(uint64(max(move.Bytes, 0))),
			move.Source,
			destination,
		})
	}
	return tableView{
		headers: []string{"When", "Batch", "Outcome", "Size", "Source", "Destination"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		footer:  outcomeTotals(counts),
	}
}

func outcomeTotals(counts map[string]int) string {
	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	parts := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		parts = append(parts, fmt.Sprintf("%s %d", outcome, counts[outcome]))
	}
	return "all time: " + strings.Join(parts, ", ")
}

func shortBatch(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
