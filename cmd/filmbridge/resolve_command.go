package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filmbridge/internal/store"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <source-id>",
		Short: "Force one record through both resolvers, ignoring the refresh policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSourceID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(db *store.Store) error {
				source, err := db.GetSource(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("load source record: %w", err)
				}
				if source == nil {
					return fmt.Errorf("source record %d not found; import it first", id)
				}
				runner, err := ctx.newRunner(db)
				if err != nil {
					return err
				}

				result := runner.ResolveOne(cmd.Context(), *source)
				if asJSON {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d %s: %s\n", result.SourceID, result.Title, renderStatus(result, shouldColorize(out)))
				if result.IMDbID != "" {
					fmt.Fprintf(out, "  imdb %s (%s)\n", result.IMDbID, result.IMDbRung)
				}
				if result.TMDBID != "" {
					fmt.Fprintf(out, "  tmdb %s (%s)\n", result.TMDBID, result.TMDBRung)
				}
				if result.Error != "" {
					fmt.Fprintf(out, "  error: %s\n", result.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func parseSourceID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid source id %q", raw)
	}
	return id, nil
}
