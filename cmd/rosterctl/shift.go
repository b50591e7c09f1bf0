package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	roster "github.com/goliatone/go-roster"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates <date> <role> <person>",
	Short: "List swaps and substitutes for a scheduled person",
	Long: `List the other Sundays whose cell in the same role could trade with
the person, and the registered people who serve the role and could cover the
slot. Substitutes are only listed when registry.path is set.`,
	Args: cobra.ExactArgs(3),
	RunE: runCandidates,
}

var swapCmd = &cobra.Command{
	Use:   "swap <date> <role> <person> <other-date> <other-person>",
	Short: "Trade two people between Sundays in one role",
	Args:  cobra.ExactArgs(5),
	RunE:  runSwap,
}

var substituteCmd = &cobra.Command{
	Use:   "substitute <date> <role> <person> <substitute>",
	Short: "Hand a person's slot to someone else",
	Args:  cobra.ExactArgs(4),
	RunE:  runSubstitute,
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(swapCmd)
	rootCmd.AddCommand(substituteCmd)
}

func runCandidates(cmd *cobra.Command, args []string) error {
	date, err := parseDate(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		found, err := s.ShiftCandidates(ctx, date, args[1], args[2])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(found.Swaps) == 0 && len(found.Substitutes) == 0 {
			fmt.Fprintln(out, "No one available.")
			return nil
		}
		for _, option := range found.Swaps {
			fmt.Fprintf(out, "swap %s %s\n", option.Date, strings.Join(option.People, "/"))
		}
		for _, name := range found.Substitutes {
			fmt.Fprintf(out, "substitute %s\n", name)
		}
		return nil
	})
}

func runSwap(cmd *cobra.Command, args []string) error {
	date, err := parseDate(args[0])
	if err != nil {
		return err
	}
	other, err := parseDate(args[3])
	if err != nil {
		return err
	}
	role, person, otherPerson := args[1], args[2], args[4]
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		if err := s.SwapPerson(ctx, date, role, person, other, otherPerson); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s: %s\n", date, role, joinCell(s, date, role))
		fmt.Fprintf(out, "%s %s: %s\n", other, role, joinCell(s, other, role))
		remindDuties(out, s, other, person, role)
		remindDuties(out, s, date, otherPerson, role)
		return nil
	})
}

func runSubstitute(cmd *cobra.Command, args []string) error {
	date, err := parseDate(args[0])
	if err != nil {
		return err
	}
	role, substitute := args[1], args[3]
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		if err := s.SubstitutePerson(ctx, date, role, args[2], substitute); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s: %s\n", date, role, joinCell(s, date, role))
		remindDuties(out, s, date, substitute, role)
		return nil
	})
}

// remindDuties notes the other roles person already serves on date.
func remindDuties(out io.Writer, s *roster.Session, date roster.DateKey, person, role string) {
	var others []string
	for _, duty := range s.Duties(date, strings.TrimSpace(person)) {
		if duty != role {
			others = append(others, duty)
		}
	}
	if len(others) > 0 {
		fmt.Fprintf(out, "note: %s also serves %s on %s\n", strings.TrimSpace(person), strings.Join(others, ", "), date)
	}
}
