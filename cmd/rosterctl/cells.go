package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	roster "github.com/goliatone/go-roster"
)

var assignCmd = &cobra.Command{
	Use:   "assign <date> <role> <person>",
	Short: "Add a person to the end of a cell",
	Args:  cobra.ExactArgs(3),
	RunE:  runAssign,
}

var removeCmd = &cobra.Command{
	Use:   "remove <date> <role> <person>",
	Short: "Remove a person from a cell",
	Args:  cobra.ExactArgs(3),
	RunE:  runRemove,
}

var moveCmd = &cobra.Command{
	Use:   "move <from-date> <from-role> <to-date> <to-role> <person>",
	Short: "Move a person between cells",
	Long: `Move a person between cells. The removal and the assignment are two
separate changes: if the destination already lists the person the removal is
kept and an error is reported.`,
	Args: cobra.ExactArgs(5),
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(moveCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
	date, err := parseDate(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		if err := s.AssignPerson(ctx, date, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", date, args[1], joinCell(s, date, args[1]))
		return nil
	})
}

func runRemove(cmd *cobra.Command, args []string) error {
	date, err := parseDate(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		if err := s.RemovePerson(ctx, date, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", date, args[1], joinCell(s, date, args[1]))
		return nil
	})
}

func runMove(cmd *cobra.Command, args []string) error {
	fromDate, err := parseDate(args[0])
	if err != nil {
		return err
	}
	toDate, err := parseDate(args[2])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		err := s.MovePerson(ctx, fromDate, args[1], toDate, args[3], args[4])
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s: %s\n", fromDate, args[1], joinCell(s, fromDate, args[1]))
		fmt.Fprintf(out, "%s %s: %s\n", toDate, args[3], joinCell(s, toDate, args[3]))
		return err
	})
}

func joinCell(s *roster.Session, date roster.DateKey, role string) string {
	row, ok := s.Row(date)
	if !ok {
		return ""
	}
	people := row.Cells[role]
	if len(people) == 0 {
		return "(empty)"
	}
	out := people[0]
	for _, person := range people[1:] {
		out += "/" + person
	}
	return out
}
