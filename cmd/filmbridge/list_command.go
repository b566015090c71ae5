package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"filmbridge/internal/film"
	"filmbridge/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var unlinkedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored merged records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(db *store.Store) error {
				records, err := db.ListMerged(cmd.Context())
				if err != nil {
					return err
				}
				if unlinkedOnly {
					records = filterUnlinked(records)
				}
				if asJSON {
					if records == nil {
						records = []film.MergedRecord{}
					}
					return writeJSON(cmd, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No merged records")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Year", "IMDb", "TMDB", "Stored"},
					buildMergedListRows(records),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	cmd.Flags().BoolVar(&unlinkedOnly, "unlinked", false, "Only records missing an IMDb or TMDB id")
	return cmd
}

func filterUnlinked(records []film.MergedRecord) []film.MergedRecord {
	var out []film.MergedRecord
	for _, record := range records {
		if record.IMDbID == "" || record.TMDBID == "" {
			out = append(out, record)
		}
	}
	return out
}

func buildMergedListRows(records []film.MergedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		stored := ""
		if !record.StoredAt.IsZero() {
			stored = record.StoredAt.Local().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.FormatInt(record.SourceID, 10),
			record.Title,
			record.Year,
			dashIfEmpty(record.IMDbID),
			dashIfEmpty(record.TMDBID),
			stored,
		})
	}
	return rows
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
