// Package config loads rosterctl configuration from a single TOML or YAML
// file. The format is picked by extension; values not present in the file
// keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	roster "github.com/goliatone/go-roster"
	"github.com/goliatone/go-roster/pkg/rules"
)

const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

var (
	// ErrUnsupportedFormat indicates a config file extension other than
	// .toml, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")

	// ErrInvalid indicates a config value failed validation.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config is the full rosterctl configuration.
type Config struct {
	Roster   RosterConfig   `toml:"roster" yaml:"roster"`
	Store    StoreConfig    `toml:"store" yaml:"store"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Advisory AdvisoryConfig `toml:"advisory" yaml:"advisory"`
	Registry RegistryConfig `toml:"registry" yaml:"registry"`
}

// RosterConfig configures the session.
type RosterConfig struct {
	// SourceID names the roster in audit records and activity events.
	SourceID string `toml:"source_id" yaml:"source_id"`

	// Location is an IANA zone name or a fixed offset such as UTC+8.
	// Default: UTC+8
	Location string `toml:"location" yaml:"location"`

	MaxFutureRows int      `toml:"max_future_rows" yaml:"max_future_rows"`
	MaxPastRows   int      `toml:"max_past_rows" yaml:"max_past_rows"`
	HistorySize   int      `toml:"history_size" yaml:"history_size"`
	SeedWeeks     int      `toml:"seed_weeks" yaml:"seed_weeks"`
	DefaultRoles  []string `toml:"default_roles" yaml:"default_roles"`

	// Actor is recorded as the actor of activity events.
	Actor string `toml:"actor" yaml:"actor"`
}

// StoreConfig selects the roster store.
type StoreConfig struct {
	// Driver is sqlite, file or memory.
	Driver string `toml:"driver" yaml:"driver"`

	// Path is the sqlite database file or the file store directory.
	Path string `toml:"path" yaml:"path"`

	// AuditPath optionally keeps audit records in a separate store of the
	// same driver.
	AuditPath string `toml:"audit_path" yaml:"audit_path"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
}

// AdvisoryConfig selects the rule used by check-users.
type AdvisoryConfig struct {
	Engine     string `toml:"engine" yaml:"engine"`
	Expression string `toml:"expression" yaml:"expression"`
}

// RegistryConfig points at the JSON user registry. An empty path disables
// the advisory check.
type RegistryConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// Default returns the configuration used before a file is applied.
func Default() *Config {
	return &Config{
		Roster: RosterConfig{
			SourceID:      roster.DefaultSourceID,
			Location:      "UTC+8",
			MaxFutureRows: roster.DefaultMaxFutureRows,
			MaxPastRows:   roster.DefaultMaxPastRows,
			HistorySize:   roster.DefaultHistorySize,
			SeedWeeks:     roster.DefaultSeedWeeks,
			DefaultRoles:  append([]string{}, roster.DefaultRoles...),
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "roster.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Advisory: AdvisoryConfig{
			Engine: rules.EngineExpr,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Roster.SourceID) == "" {
		errs = append(errs, fmt.Errorf("%w: roster.source_id is empty", ErrInvalid))
	}
	if c.Roster.MaxFutureRows <= 0 {
		errs = append(errs, fmt.Errorf("%w: roster.max_future_rows must be positive", ErrInvalid))
	}
	if c.Roster.MaxPastRows < 0 {
		errs = append(errs, fmt.Errorf("%w: roster.max_past_rows is negative", ErrInvalid))
	}
	if c.Roster.HistorySize <= 0 {
		errs = append(errs, fmt.Errorf("%w: roster.history_size must be positive", ErrInvalid))
	}
	if c.Roster.SeedWeeks < 0 || c.Roster.SeedWeeks > c.Roster.MaxFutureRows {
		errs = append(errs, fmt.Errorf("%w: roster.seed_weeks must be between 0 and max_future_rows", ErrInvalid))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverFile:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, fmt.Errorf("%w: store.path is empty", ErrInvalid))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown store.driver %q", ErrInvalid, c.Store.Driver))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log.format %q", ErrInvalid, c.Log.Format))
	}
	switch strings.ToLower(strings.TrimSpace(c.Advisory.Engine)) {
	case "", rules.EngineExpr, rules.EngineCEL, rules.EngineJS:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown advisory.engine %q", ErrInvalid, c.Advisory.Engine))
	}
	return errors.Join(errs...)
}

var offsetPattern = regexp.MustCompile(`^UTC([+-])(\d{1,2})(?::(\d{2}))?$`)

// Location resolves Roster.Location. Fixed offsets are written UTC+8 or
// UTC-03:30; anything else is loaded as an IANA zone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Roster.Location)
	if name == "" || name == "UTC+8" {
		return roster.DefaultLocation, nil
	}
	if match := offsetPattern.FindStringSubmatch(name); match != nil {
		hours, _ := strconv.Atoi(match[2])
		minutes := 0
		if match[3] != "" {
			minutes, _ = strconv.Atoi(match[3])
		}
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("%w: roster.location %q out of range", ErrInvalid, name)
		}
		offset := hours*3600 + minutes*60
		if match[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(name, offset), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: roster.location %q: %v", ErrInvalid, name, err)
	}
	return loc, nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	value := strings.TrimSpace(l.Level)
	if value == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return level, nil
}

// Logger builds a slog logger writing to w.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SessionOptions translates the roster section into session options.
func (c *Config) SessionOptions() ([]roster.Option, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	opts := []roster.Option{
		roster.WithSourceID(c.Roster.SourceID),
		roster.WithLocation(loc),
		roster.WithMaxFutureRows(c.Roster.MaxFutureRows),
		roster.WithMaxPastRows(c.Roster.MaxPastRows),
		roster.WithHistorySize(c.Roster.HistorySize),
		roster.WithSeedWeeks(c.Roster.SeedWeeks),
	}
	if len(c.Roster.DefaultRoles) > 0 {
		opts = append(opts, roster.WithDefaultRoles(c.Roster.DefaultRoles...))
	}
	if actor := strings.TrimSpace(c.Roster.Actor); actor != "" {
		opts = append(opts, roster.WithActor(actor, "", ""))
	}
	if c.Advisory.Engine != "" || c.Advisory.Expression != "" {
		opts = append(opts, roster.WithAdvisoryRule(c.Advisory.Engine, nil, c.Advisory.Expression))
	}
	return opts, nil
}
