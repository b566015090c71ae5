package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"filmbridge/internal/film"
	"filmbridge/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var imdbID, tmdbID string

	cmd := &cobra.Command{
		Use:   "show [source-id]",
		Short: "Print the stored merged record",
		Long: `Print the stored merged record for a catalog id, or look it up by a
confirmed service id with --imdb or --tmdb.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := parseShowTarget(args, imdbID, tmdbID)
			if err != nil {
				return err
			}
			return ctx.withStore(func(db *store.Store) error {
				record, err := lookup.load(cmd, db)
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("no merged record for %s; run sync or resolve first", lookup)
				}
				if asJSON {
					return writeJSON(cmd, record)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Field", "Value"},
					mergedRows(record),
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	cmd.Flags().StringVar(&imdbID, "imdb", "", "Find the record confirmed to this IMDb id")
	cmd.Flags().StringVar(&tmdbID, "tmdb", "", "Find the record confirmed to this TMDB id")
	cmd.MarkFlagsMutuallyExclusive("imdb", "tmdb")
	return cmd
}

// showTarget is either a catalog id or a confirmed service id.
type showTarget struct {
	sourceID int64
	service  film.Service
	id       string
}

func parseShowTarget(args []string, imdbID, tmdbID string) (showTarget, error) {
	imdbID, tmdbID = strings.TrimSpace(imdbID), strings.TrimSpace(tmdbID)
	external := imdbID != "" || tmdbID != ""
	switch {
	case len(args) == 1 && external:
		return showTarget{}, fmt.Errorf("pass either a source id or --imdb/--tmdb, not both")
	case len(args) == 1:
		id, err := parseSourceID(args[0])
		if err != nil {
			return showTarget{}, err
		}
		return showTarget{sourceID: id}, nil
	case imdbID != "":
		return showTarget{service: film.ServiceIMDb, id: imdbID}, nil
	case tmdbID != "":
		return showTarget{service: film.ServiceTMDB, id: tmdbID}, nil
	default:
		return showTarget{}, fmt.Errorf("a source id, --imdb or --tmdb is required")
	}
}

func (t showTarget) load(cmd *cobra.Command, db *store.Store) (*film.MergedRecord, error) {
	if t.service == "" {
		record, err := db.Get(cmd.Context(), t.sourceID)
		if err != nil {
			return nil, fmt.Errorf("load merged record: %w", err)
		}
		return record, nil
	}
	record, err := db.FindByExternalID(cmd.Context(), t.service, t.id)
	if err != nil {
		return nil, fmt.Errorf("find merged record: %w", err)
	}
	return record, nil
}

func (t showTarget) String() string {
	if t.service == "" {
		return fmt.Sprintf("source %d", t.sourceID)
	}
	return fmt.Sprintf("%s id %s", t.service, t.id)
}

// mergedRows lists the populated fields of record in display order.
func mergedRows(record *film.MergedRecord) [][]string {
	var rows [][]string
	add := func(field, value string) {
		if strings.TrimSpace(value) != "" {
			rows = append(rows, []string{field, value})
		}
	}
	withRung := func(id, rung string) string {
		if id == "" || rung == "" {
			return id
		}
		return fmt.Sprintf("%s (%s)", id, rung)
	}

	add("Source ID", strconv.FormatInt(record.SourceID, 10))
	add("Title", record.Title)
	add("Original title", record.OriginalTitle)
	add("Year", record.Year)
	add("IMDb", withRung(record.IMDbID, record.IMDbRung))
	add("TMDB", withRung(record.TMDBID, record.TMDBRung))
	add("Directors", strings.Join(record.Directors, ", "))
	add("Genres", strings.Join(record.Genres, ", "))
	add("Origin", record.Origin)
	add("Release", record.ReleaseDate)
	add("Language", record.Language)
	if record.RuntimeMinutes > 0 {
		add("Runtime", fmt.Sprintf("%d min", record.RuntimeMinutes))
	}
	if record.RatingCount > 0 {
		add("TMDB rating", fmt.Sprintf("%.1f (%d votes)", record.RatingAverage, record.RatingCount))
	}
	if record.IMDbVotes > 0 {
		add("IMDb rating", fmt.Sprintf("%.1f (%d votes)", record.IMDbRating, record.IMDbVotes))
	}
	add("Synopsis", record.Synopsis)
	add("English synopsis", record.EnglishSynopsis)
	add("Poster", record.PosterURL)
	add("Trailer", record.TrailerURL)
	if !record.StoredAt.IsZero() {
		add("Stored", record.StoredAt.Local().Format(time.RFC3339))
	}
	return rows
}
