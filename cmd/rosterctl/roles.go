package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	roster "github.com/goliatone/go-roster"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage roster roles",
	Long: `Manage the roster's roles (columns).

Examples:
  rosterctl role list
  rosterctl role add Drums
  rosterctl role add-info Notes
  rosterctl role rename Keys Piano
  rosterctl role reorder 3 0
  rosterctl role info Notes false`,
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles in order",
	Args:  cobra.NoArgs,
	RunE:  runRoleList,
}

var roleAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a people role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
			return s.AddRole(ctx, args[0])
		})
	},
}

var roleAddInfoCmd = &cobra.Command{
	Use:   "add-info <name>",
	Short: "Add a free-text info column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
			return s.AddInfoColumn(ctx, args[0])
		})
	},
}

var roleRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a role in every row",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
			return s.RenameRole(ctx, args[0], args[1])
		})
	},
}

var roleDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a role and its cells",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleDelete,
}

var roleReorderCmd = &cobra.Command{
	Use:   "reorder <from> <to>",
	Short: "Move the role at index <from> to index <to>",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoleReorder,
}

var roleInfoCmd = &cobra.Command{
	Use:   "info <name> <true|false>",
	Short: "Mark a role as a free-text info column or a people role",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoleInfo,
}

func init() {
	rootCmd.AddCommand(roleCmd)
	roleCmd.AddCommand(roleListCmd)
	roleCmd.AddCommand(roleAddCmd)
	roleCmd.AddCommand(roleAddInfoCmd)
	roleCmd.AddCommand(roleRenameCmd)
	roleCmd.AddCommand(roleDeleteCmd)
	roleCmd.AddCommand(roleReorderCmd)
	roleCmd.AddCommand(roleInfoCmd)
}

func runRoleList(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(_ context.Context, s *roster.Session) error {
		out := cmd.OutOrStdout()
		for i, role := range s.Roles() {
			marker := ""
			if s.IsInfoColumn(role) {
				marker = " (info)"
			}
			fmt.Fprintf(out, "%2d  %s%s\n", i, role, marker)
		}
		return nil
	})
}

func runRoleDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		check, err := s.CheckDeleteRole(args[0])
		if err != nil {
			return err
		}
		if err := confirm(cmd, check); err != nil {
			return err
		}
		return s.DeleteRole(ctx, args[0])
	})
}

func runRoleReorder(cmd *cobra.Command, args []string) error {
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", roster.ErrIndexOutOfRange, args[0])
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: %q", roster.ErrIndexOutOfRange, args[1])
	}
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		if err := s.ReorderRoles(ctx, from, to); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(s.Roles(), ", "))
		return nil
	})
}

func runRoleInfo(cmd *cobra.Command, args []string) error {
	info, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("rosterctl: %q is not true or false", args[1])
	}
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		return s.SetInfoColumn(ctx, args[0], info)
	})
}
