package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	roster "github.com/goliatone/go-roster"
	"github.com/goliatone/go-roster/pkg/store"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the roster",
	Long: `Print the roster with one row per Sunday. Columns follow the display
groups; hidden roles are left out unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var diffCmd = &cobra.Command{
	Use:   "diff [session-key]",
	Short: "List audit records, or print what one session changed",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiff,
}

var (
	showPast bool
	showAll  bool
)

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(diffCmd)

	showCmd.Flags().BoolVar(&showPast, "past", false, "Also print the read-only past weeks")
	showCmd.Flags().BoolVar(&showAll, "all", false, "Include hidden roles")
}

func runShow(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		roles := s.Roles()
		if !showAll {
			roles = s.Display().VisibleRoles(roles, nil)
		}
		out := cmd.OutOrStdout()
		if showPast {
			past, err := s.LoadPast(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Past:")
			printRows(out, past, roles)
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Roster %s from %s:\n", s.SourceID(), s.ReferenceSunday())
		printRows(out, s.Rows(), roles)
		return nil
	})
}

func printRows(out io.Writer, rows []roster.Row, roles []string) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "DATE\t%s\n", strings.Join(roles, "\t"))
	for _, row := range rows {
		cells := make([]string, 0, len(roles))
		for _, role := range roles {
			cells = append(cells, strings.Join(row.Cells[role], "/"))
		}
		fmt.Fprintf(w, "%s\t%s\n", row.Date, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func runDiff(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer closeStore()
	dedicated := false
	if cfg.Store.AuditPath != "" {
		audit, closeAudit, err := openStore(cfg.Store.AuditPath)
		if err != nil {
			return err
		}
		defer closeAudit()
		st, dedicated = audit, true
	}

	entries, err := roster.ReadAuditRecords(cmd.Context(), st, dedicated)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, entry := range entries {
			fmt.Fprintf(out, "%s\t%s\t%d rows changed\n", entry.SessionKey, entry.Record.SourceID, len(entry.Record.Difference))
		}
		return nil
	}
	for _, entry := range entries {
		if entry.SessionKey == args[0] {
			printDifference(out, entry.Record)
			return nil
		}
	}
	return fmt.Errorf("rosterctl: no audit record for session %q", args[0])
}

func printDifference(out io.Writer, record roster.AuditRecord) {
	dates := make([]string, 0, len(record.Difference))
	for date := range record.Difference {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	roles := record.OriginalSnapshot[store.MetadataKey]["roleList"]
	for _, date := range dates {
		cells := record.Difference[date]
		for _, role := range orderedRoles(roles, cells) {
			before := strings.Join(record.OriginalSnapshot[date][role], "/")
			after := strings.Join(cells[role], "/")
			fmt.Fprintf(out, "%s %s: %q -> %q\n", date, role, before, after)
		}
	}
}

// orderedRoles lists the roles of cells in the pinned role order, then any
// roles added during the session by name.
func orderedRoles(pinned []string, cells map[string][]string) []string {
	out := make([]string, 0, len(cells))
	seen := map[string]bool{}
	for _, role := range pinned {
		if _, ok := cells[role]; ok {
			out = append(out, role)
			seen[role] = true
		}
	}
	var extra []string
	for role := range cells {
		if !seen[role] {
			extra = append(extra, role)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
