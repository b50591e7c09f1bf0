package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	roster "github.com/goliatone/go-roster"
	"github.com/goliatone/go-roster/pkg/activity"
	"github.com/goliatone/go-roster/pkg/config"
	"github.com/goliatone/go-roster/pkg/registry"
	"github.com/goliatone/go-roster/pkg/store"
	"github.com/goliatone/go-roster/pkg/store/filestore"
	"github.com/goliatone/go-roster/pkg/store/sqlitestore"
)

var (
	configPath  string
	storePath   string
	storeDriver string
	sourceID    string
	assumeYes   bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rosterctl",
	Short: "Edit the weekly Sunday service roster",
	Long: `rosterctl edits a shared weekly service roster.

Rows are Sundays starting with the next one; columns are roles. Every command
opens the roster, applies a single change and records what the session
changed in the audit log.

Examples:
  rosterctl show
  rosterctl assign 2026.01.04 Piano Alice
  rosterctl move 2026.01.04 Piano 2026.01.11 Piano Alice
  pbpaste | rosterctl import --row 0 --role 2`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (.toml, .yaml or .yml)")
	flags.StringVar(&storePath, "store", "", "Store path, overrides store.path")
	flags.StringVar(&storeDriver, "driver", "", "Store driver: sqlite, file or memory")
	flags.StringVar(&sourceID, "source", "", "Roster source id, overrides roster.source_id")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before destructive changes")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded := config.Default()
	if configPath != "" {
		var err error
		if loaded, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if storePath != "" {
		loaded.Store.Path = storePath
	}
	if storeDriver != "" {
		loaded.Store.Driver = storeDriver
	}
	if sourceID != "" {
		loaded.Roster.SourceID = sourceID
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	logger = cfg.Log.Logger(cmd.ErrOrStderr())
	return nil
}

// openStore opens the configured store. The returned close func is never nil.
func openStore(path string) (store.Store, func() error, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		st, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case config.DriverFile:
		st, err := filestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() error { return nil }, nil
	default:
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
}

// withSession runs fn inside one editing session and writes the audit
// record afterwards, whatever fn returned.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *roster.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, closeStore, err := openStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer closeStore()

	opts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	opts = append(opts,
		roster.WithMutationLogger(roster.SlogLogger(logger)),
		roster.WithActivityHooks(activity.HookFunc(logActivity)),
	)
	if cfg.Store.AuditPath != "" {
		audit, closeAudit, err := openStore(cfg.Store.AuditPath)
		if err != nil {
			return err
		}
		defer closeAudit()
		opts = append(opts, roster.WithAuditStore(audit))
	}
	if cfg.Registry.Path != "" {
		opts = append(opts, roster.WithUserRegistry(registry.NewFileRegistry(cfg.Registry.Path)))
	}

	session, err := roster.Open(ctx, st, opts...)
	if err != nil {
		return err
	}
	defer session.End(ctx)
	return fn(ctx, session)
}

func logActivity(ctx context.Context, event activity.Event) error {
	logger.LogAttrs(ctx, slog.LevelDebug, "activity",
		slog.String("verb", event.Verb),
		slog.String("object", event.ObjectID),
		slog.Any("metadata", event.Metadata),
	)
	return nil
}

var errAborted = errors.New("rosterctl: aborted")

// confirm asks on stdin when c requires it, unless --yes was given.
func confirm(cmd *cobra.Command, c roster.Confirmation) error {
	if !c.Required || assumeYes {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\nContinue? [y/N] ", c.Risk)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}

func parseDate(input string) (roster.DateKey, error) {
	return roster.ParseDateKey(input)
}

func defaultRegistryPath() string {
	if cfg.Registry.Path != "" {
		return cfg.Registry.Path
	}
	return filepath.Join(filepath.Dir(cfg.Store.Path), "users.json")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
