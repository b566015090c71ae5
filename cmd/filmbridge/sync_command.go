package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"filmbridge/internal/reconcile"
	"filmbridge/internal/store"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile imported records against IMDb and TMDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another filmbridge sync is already running")
			}
			defer func() { _ = lock.Unlock() }()

			return ctx.withStore(func(db *store.Store) error {
				sources, err := db.ListSources(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list source records: %w", err)
				}
				runner, err := ctx.newRunner(db)
				if err != nil {
					return err
				}

				report, runErr := runner.Run(cmd.Context(), sources)
				if asJSON {
					if err := writeJSON(cmd, report); err != nil {
						return err
					}
				} else {
					printReport(cmd, report)
				}
				return runErr
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Process at most this many records (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the batch report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, report reconcile.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	if len(report.Results) > 0 {
		rows := make([][]string, 0, len(report.Results))
		for _, result := range report.Results {
			note := result.Error
			if note == "" {
				note = joinRungs(result)
			}
			rows = append(rows, []string{
				strconv.FormatInt(result.SourceID, 10),
				result.Title,
				renderStatus(result, colorize),
				result.IMDbID,
				result.TMDBID,
				note,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"ID", "Title", "Status", "IMDb", "TMDB", "Detail"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
	}

	fmt.Fprintf(out, "Batch %s (%s)\n", report.BatchID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	for _, status := range []reconcile.Status{
		reconcile.StatusResolved,
		reconcile.StatusUnresolved,
		reconcile.StatusSkipped,
		reconcile.StatusFailed,
	} {
		fmt.Fprintln(out, renderCountLine(status, report.Count(status), colorize))
	}
}

func joinRungs(result reconcile.Result) string {
	switch {
	case result.IMDbRung != "" && result.TMDBRung != "":
		return "imdb " + result.IMDbRung + ", tmdb " + result.TMDBRung
	case result.IMDbRung != "":
		return "imdb " + result.IMDbRung
	case result.TMDBRung != "":
		return "tmdb " + result.TMDBRung
	default:
		return ""
	}
}
