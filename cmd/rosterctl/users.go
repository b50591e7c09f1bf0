package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	roster "github.com/goliatone/go-roster"
	"github.com/goliatone/go-roster/pkg/registry"
)

var checkUsersCmd = &cobra.Command{
	Use:   "check-users",
	Short: "List scheduled people missing from the user registry",
	Long: `Compare everyone scheduled in the future rows with the user registry
and list the people the advisory rule flags: by default anyone who is not
registered, or is scheduled for a role they are not registered to serve.

The check is advisory. Nothing is changed and the exit status is zero unless
the registry cannot be read.`,
	Args: cobra.NoArgs,
	RunE: runCheckUsers,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Maintain the JSON user registry",
}

var userGrantCmd = &cobra.Command{
	Use:   "grant <name> <role>...",
	Short: "Register roles a person serves on this roster, adding them if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runUserGrant,
}

var userRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a person from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserRemove,
}

func init() {
	rootCmd.AddCommand(checkUsersCmd)
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userGrantCmd)
	userCmd.AddCommand(userRemoveCmd)
}

func runCheckUsers(cmd *cobra.Command, _ []string) error {
	if cfg.Registry.Path == "" {
		return fmt.Errorf("%w: set registry.path", roster.ErrNoUserRegistry)
	}
	return withSession(cmd, func(ctx context.Context, s *roster.Session) error {
		advisory, err := s.CheckMissingUsers(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !advisory.Flagged {
			fmt.Fprintln(out, "Everyone scheduled is registered for their roles.")
			return nil
		}
		for _, finding := range advisory.Findings {
			if !finding.Flagged {
				continue
			}
			switch {
			case !finding.Registered:
				fmt.Fprintf(out, "%s: not registered (scheduled for %s)\n", finding.Person, strings.Join(finding.Roles, ", "))
			case len(finding.Missing) > 0:
				fmt.Fprintf(out, "%s: not registered for %s\n", finding.Person, strings.Join(finding.Missing, ", "))
			default:
				fmt.Fprintf(out, "%s: flagged\n", finding.Person)
			}
		}
		return nil
	})
}

func runUserGrant(cmd *cobra.Command, args []string) error {
	users := registry.NewFileRegistry(defaultRegistryPath())
	if err := users.Grant(args[0], cfg.Roster.SourceID, args[1:]...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s serves %s on %s\n", args[0], strings.Join(args[1:], ", "), cfg.Roster.SourceID)
	return nil
}

func runUserRemove(cmd *cobra.Command, args []string) error {
	path := defaultRegistryPath()
	if !fileExists(path) {
		return fmt.Errorf("%w: %s", registry.ErrRegistryNotFound, path)
	}
	if err := registry.NewFileRegistry(path).Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}
