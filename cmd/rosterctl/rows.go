package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	roster "github.com/goliatone/go-roster"
)

var addRowCmd = &cobra.Command{
	Use:   "add-row",
	Short: "Append the Sunday after the last row",
	Args:  cobra.NoArgs,
	RunE:  runAddRow,
}

var removeLastRowCmd = &cobra.Command{
	Use:   "remove-last-row",
	Short: "Delete the last row and its assignments",
	Args:  cobra.NoArgs,
	RunE:  runRemoveLastRow,
}

var shiftDatesCmd = &cobra.Command{
	Use:   "shift-dates <index> <new-date>",
	Short: "Move row <index> to <new-date> and every other row by the same offset",
	Long: `Move the row at <index> (0 is the first future Sunday) to <new-date>.
Every row moves by the same number of days and is stored under its new date.

Example:
  rosterctl shift-dates 0 2026.01.11`,
	Args: cobra.ExactArgs(2),
	RunE: runShiftDates,
}

func init() {
	rootCmd.AddCommand(addRowCmd)
	rootCmd.AddCommand(removeLastRowCmd)
	rootCmd.AddCommand(shiftDatesCmd)
}

func runAddRow(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		date, err := s.AddRow(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", date)
		return nil
	})
}

func runRemoveLastRow(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		check, err := s.CheckRemoveLastRow()
		if err != nil {
			return err
		}
		if err := confirm(cmd, check); err != nil {
			return err
		}
		date, err := s.RemoveLastRow(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", date)
		return nil
	})
}

func runShiftDates(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q is not a row index", roster.ErrIndexOutOfRange, args[0])
	}
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		check, err := s.CheckShiftDates(index, args[1])
		if err != nil {
			return err
		}
		if err := confirm(cmd, check); err != nil {
			return err
		}
		if err := s.ShiftAllDates(ctx, index, args[1]); err != nil {
			return err
		}
		rows := s.Rows()
		if len(rows) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Rows now run %s to %s\n", rows[0].Date, rows[len(rows)-1].Date)
		}
		return nil
	})
}
