package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"filmbridge/internal/config"
	"filmbridge/internal/film"
	"filmbridge/internal/store"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load catalog records from a JSON array (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readSourceRecords(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(db *store.Store) error {
				if err := db.PutSources(cmd.Context(), records); err != nil {
					return fmt.Errorf("import aborted, nothing stored: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records\n", len(records))
				return nil
			})
		},
	}
}

func readSourceRecords(stdin io.Reader, arg string) ([]film.SourceRecord, error) {
	arg = strings.TrimSpace(arg)
	var reader io.Reader
	if arg == "-" {
		reader = stdin
	} else {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer file.Close()
		reader = file
	}

	var records []film.SourceRecord
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode source records: %w", err)
	}
	return records, nil
}
