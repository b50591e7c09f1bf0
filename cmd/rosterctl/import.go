package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	roster "github.com/goliatone/go-roster"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Paste tab-separated cells from stdin",
	Long: `Read tab-separated lines from stdin and write them into the roster
starting at row --row and role --role. Each line fills one row; people in a
cell are separated by "/". Imported cells replace what was there.

With --top-level blank lines are skipped and a leading date column is
dropped, matching a copy of the whole sheet.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var (
	importRow      int
	importRole     int
	importTopLevel bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVar(&importRow, "row", 0, "First row to fill")
	importCmd.Flags().IntVar(&importRole, "role", 0, "First role to fill")
	importCmd.Flags().BoolVar(&importTopLevel, "top-level", false, "Treat input as a whole-sheet copy")
}

func runImport(cmd *cobra.Command, _ []string) error {
	// Stdin carries the paste, so only --yes can confirm.
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}
	text := string(data)
	mode := roster.ImportAnchored
	if importTopLevel {
		mode = roster.ImportTopLevel
	}

	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		if !assumeYes && s.CheckImport(text, mode).Required {
			fmt.Fprintln(cmd.ErrOrStderr(), "import reads stdin; pass --yes to confirm")
			return errAborted
		}
		result, err := s.Import(ctx, text, roster.ImportOptions{Mode: mode, Row: importRow, Role: importRole})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cells over %d rows (%s)\n", result.Cells, result.Rows, mode)
		return nil
	})
}
