package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tvshelf/internal/fileepisode"
	"tvshelf/internal/workflow"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <paths...>",
		Short: "Show what tvshelf reads from each filename",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(runner *workflow.Runner) error {
				files, err := runner.Scan(args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(files) == 0 {
					fmt.Fprintln(out, "No video files found")
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(files))
				for _, f := range files {
					snap := f.Snapshot()
					rows = append(rows, []string{
						filepath.Base(snap.Path),
						snap.ShowFragment,
						placementLabel(snap),
						snap.Resolution,
						renderState(parseLabel(snap), colorize),
					})
				}
				fmt.Fprintln(out, tableView{
					headers: []string{"File", "Show", "Episode", "Resolution", "Status"},
					rows:    rows,
				}.render())
				return nil
			})
		},
	}
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <paths...>",
		Short: "Resolve files and list their proposed destinations without moving anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(runner *workflow.Runner) error {
				files, err := runner.Scan(args)
				if err != nil {
					return err
				}
				summary := runner.Resolve(cmd.Context(), files)
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, resolvedTable(files, shouldColorize(out)).render())
				fmt.Fprintf(out, "%d files, %d resolved, %d unresolved, %d skipped\n",
					summary.Files, summary.Resolved, summary.Unresolved, summary.Skipped)
				return nil
			})
		},
	}
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var choose int

	cmd := &cobra.Command{
		Use:   "rename <paths...>",
		Short: "Resolve files and move them into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if choose < 0 {
				return fmt.Errorf("--choose must not be negative")
			}
			return ctx.withRunner(func(runner *workflow.Runner) error {
				files, err := runner.Scan(args)
				if err != nil {
					return err
				}
				runner.Resolve(cmd.Context(), files)

				originals := make(map[*fileepisode.FileEpisode]string, len(files))
				unchosen := 0
				for _, f := range files {
					originals[f] = filepath.Base(f.Path())
					count := f.OptionCount()
					if choose == 0 || count == 0 {
						continue
					}
					if err := f.ChooseOption(choose); err != nil {
						f.SetIgnoreReason(fmt.Sprintf("option %d not available (%d options)", choose, count))
						unchosen++
					}
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				progress := newRelocationProgress(cmd.ErrOrStderr(), shouldColorize(cmd.ErrOrStderr()))
				report, err := runner.Relocate(cmd.Context(), files, progress, progress)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(files))
				for _, f := range files {
					snap := f.Snapshot()
					status := snap.MoveState.String()
					destination := snap.Path
					if snap.MoveState == fileepisode.Unchecked {
						status = catalogLabel(snap)
						destination = snap.Placeholder
					}
					rows = append(rows, []string{originals[f], renderState(status, colorize), destination})
				}
				fmt.Fprintln(out, tableView{
					headers: []string{"File", "Result", "Location"},
					rows:    rows,
					footer:  "batch " + report.BatchID,
				}.render())
				if incomplete := report.Summary.Partial + report.Summary.Failed + report.Summary.Abandoned; incomplete > 0 {
					return fmt.Errorf("%d of %d files were not fully relocated", incomplete, report.Summary.Total)
				}
				if unchosen > 0 {
					return fmt.Errorf("%d files have no option %d and were left in place", unchosen, choose)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&choose, "choose", 0, "Destination option to use when a file matches several episodes")
	return cmd
}

func resolvedTable(files []*fileepisode.FileEpisode, colorize bool) tableView {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		snap := f.Snapshot()
		destination := snap.Placeholder
		if len(snap.ShowCandidates) > 0 {
			destination += "\ncandidates: " + strings.Join(snap.ShowCandidates, ", ")
		}
		if len(snap.Options) > 0 {
			lines := make([]string, len(snap.Options))
			for i, option := range snap.Options {
				marker := " "
				if i == snap.Chosen {
					marker = "*"
				}
				lines[i] = fmt.Sprintf("%s[%d] %s", marker, i, option)
			}
			destination = strings.Join(lines, "\n")
		}
		rows = append(rows, []string{
			filepath.Base(snap.Path),
			snap.ShowName,
			placementLabel(snap),
			renderState(catalogLabel(snap), colorize),
			destination,
		})
	}
	return tableView{
		headers: []string{"File", "Show", "Episode", "Status", "Destination"},
		rows:    rows,
	}
}

func placementLabel(snap fileepisode.Snapshot) string {
	if snap.ParseState != fileepisode.Parsed {
		return ""
	}
	return snap.Placement.String()
}

func parseLabel(snap fileepisode.Snapshot) string {
	if snap.IgnoreReason != "" {
		return "ignored"
	}
	return snap.ParseState.String()
}

func catalogLabel(snap fileepisode.Snapshot) string {
	switch {
	case snap.IgnoreReason != "":
		return "ignored"
	case snap.ParseState != fileepisode.Parsed:
		return snap.ParseState.String()
	default:
		return snap.CatalogState.String()
	}
}
