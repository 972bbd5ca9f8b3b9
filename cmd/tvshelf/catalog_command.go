package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"tvshelf/internal/catalog"
	"tvshelf/internal/history"
	"tvshelf/internal/workflow"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the local show catalog",
	}

	catalogCmd.AddCommand(newCatalogImportCommand(ctx))
	catalogCmd.AddCommand(newCatalogSearchCommand(ctx))
	catalogCmd.AddCommand(newCatalogEpisodesCommand(ctx))

	return catalogCmd
}

func newCatalogImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load show listings from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open listing file: %w", err)
			}
			defer file.Close()

			return ctx.withStore(func(store *history.Store) error {
				report, err := history.ImportListings(cmd.Context(), store, file)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d shows (%d episodes) into %s\n",
					report.Shows, report.Episodes, store.Path())
				return nil
			})
		},
	}
}

func newCatalogSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the local catalog for a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				hits, err := history.NewLocalCatalog(store).SearchShow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(hits) == 0 {
					fmt.Fprintf(out, "No shows match %q\n", args[0])
					return nil
				}
				rows := make([][]string, 0, len(hits))
				for _, hit := range hits {
					rows = append(rows, []string{hit.ID, hit.Name})
				}
				fmt.Fprintln(out, tableView{headers: []string{"ID", "Name"}, rows: rows}.render())
				return nil
			})
		},
	}
}

func newCatalogEpisodesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "episodes <show>",
		Short: "List a show's episodes in the numbering files are matched against",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(runner *workflow.Runner) error {
				registry := runner.Registry()
				result := registry.LookupShow(cmd.Context(), args[0])
				show, ok := result.Show()
				if !ok {
					return errors.New(result.Placeholder())
				}
				listings := registry.Listings(cmd.Context(), show)
				if listings.Err != nil {
					return errors.New(catalog.ListingsPlaceholder(show, listings.Err))
				}

				index := show.Index()
				pref := index.Preference()
				placements := index.Placements(pref)
				rows := make([][]string, 0, len(placements))
				for _, placement := range placements {
					slot, _ := index.Slot(placement)
					ep := slot.Lookup(pref)
					if ep == nil {
						continue
					}
					shared := ""
					if slot.Len() > 1 {
						shared = strconv.Itoa(slot.Len())
					}
					rows = append(rows, []string{placement.String(), ep.Title(), ep.RawAirDate(), shared})
				}
				fmt.Fprintln(cmd.OutOrStdout(), tableView{
					headers: []string{"Episode", "Title", "Aired", "Shared"},
					rows:    rows,
					footer:  fmt.Sprintf("%s, %s numbering", show.Name, pref),
				}.render())
				return nil
			})
		},
	}
}
