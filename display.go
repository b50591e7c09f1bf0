package roster

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-roster/pkg/activity"
)

const (
	UngroupedID   = "ungrouped"
	UngroupedName = "Ungrouped"

	// HiddenTarget names the hidden list as a MoveRole target.
	HiddenTarget = "hidden"
)

// Group is a named, ordered set of roles shown together.
type Group struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Items          []string `json:"items"`
	DefaultVisible bool     `json:"defaultVisible"`
}

// DisplayConfig partitions the role list into groups plus a hidden list.
// Once reconciled every role appears exactly once across all of them.
type DisplayConfig struct {
	Groups []Group  `json:"groups"`
	Hidden []string `json:"hidden"`
}

// DefaultDisplay puts every role into the visible ungrouped group.
func DefaultDisplay(roles []string) DisplayConfig {
	return DisplayConfig{
		Groups: []Group{{
			ID:             UngroupedID,
			Name:           UngroupedName,
			Items:          append([]string{}, roles...),
			DefaultVisible: true,
		}},
		Hidden: []string{},
	}
}

// Clone returns a deep copy of d.
func (d DisplayConfig) Clone() DisplayConfig {
	out := DisplayConfig{
		Groups: make([]Group, len(d.Groups)),
		Hidden: append([]string{}, d.Hidden...),
	}
	for i, group := range d.Groups {
		group.Items = append([]string{}, group.Items...)
		out.Groups[i] = group
	}
	return out
}

// Group returns the group with id.
func (d *DisplayConfig) Group(id string) (*Group, bool) {
	for i := range d.Groups {
		if d.Groups[i].ID == id {
			return &d.Groups[i], true
		}
	}
	return nil, false
}

// MoveRole removes name from wherever it is and inserts it into target (a
// group id or HiddenTarget) immediately before before. An empty or unknown
// before appends at the end.
func (d *DisplayConfig) MoveRole(name, target, before string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty role", ErrInvalidName)
	}
	if target != HiddenTarget {
		if _, ok := d.Group(target); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownGroup, target)
		}
	}

	d.detach(name)
	if target == HiddenTarget {
		d.Hidden = insertBefore(d.Hidden, name, before)
		return nil
	}
	group, _ := d.Group(target)
	group.Items = insertBefore(group.Items, name, before)
	return nil
}

// AddGroup appends an empty visible group named "Group N" and returns its id.
func (d *DisplayConfig) AddGroup(id string) string {
	count := 0
	for _, group := range d.Groups {
		if group.ID != UngroupedID {
			count++
		}
	}
	d.Groups = append(d.Groups, Group{
		ID:             id,
		Name:           "Group " + strconv.Itoa(count+1),
		Items:          []string{},
		DefaultVisible: true,
	})
	return id
}

// DeleteGroup moves the group's roles to the end of ungrouped and drops it.
func (d *DisplayConfig) DeleteGroup(id string) error {
	if id == UngroupedID {
		return ErrUngroupedLocked
	}
	index := -1
	for i, group := range d.Groups {
		if group.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, id)
	}
	members := d.Groups[index].Items
	d.Groups = append(d.Groups[:index], d.Groups[index+1:]...)
	ungrouped := d.ensureUngrouped()
	ungrouped.Items = append(ungrouped.Items, members...)
	return nil
}

// RenameGroup sets a group's display name.
func (d *DisplayConfig) RenameGroup(id, name string) error {
	if id == UngroupedID {
		return ErrUngroupedLocked
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty group name", ErrInvalidName)
	}
	group, ok := d.Group(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, id)
	}
	group.Name = name
	return nil
}

// SetGroupVisibility sets whether a group is shown by default.
func (d *DisplayConfig) SetGroupVisibility(id string, visible bool) error {
	group, ok := d.Group(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, id)
	}
	group.DefaultVisible = visible
	return nil
}

// Prune drops every empty group except ungrouped.
func (d *DisplayConfig) Prune() {
	kept := d.Groups[:0]
	for _, group := range d.Groups {
		if group.ID == UngroupedID || len(group.Items) > 0 {
			kept = append(kept, group)
		}
	}
	d.Groups = kept
}

// Reconcile makes d a partition of roles: unknown and repeated names are
// dropped and roles placed nowhere are appended to ungrouped.
func (d *DisplayConfig) Reconcile(roles []string) {
	d.ensureUngrouped()
	known := make(map[string]bool, len(roles))
	for _, role := range roles {
		known[role] = true
	}
	placed := make(map[string]bool, len(roles))
	keep := func(items []string) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if known[item] && !placed[item] {
				placed[item] = true
				out = append(out, item)
			}
		}
		return out
	}
	for i := range d.Groups {
		d.Groups[i].Items = keep(d.Groups[i].Items)
	}
	d.Hidden = keep(d.Hidden)

	ungrouped, _ := d.Group(UngroupedID)
	for _, role := range roles {
		if !placed[role] {
			placed[role] = true
			ungrouped.Items = append(ungrouped.Items, role)
		}
	}
}

// VisibleRoles lists the roles to show in group order. show overrides a
// group's DefaultVisible by id; hidden roles are never returned.
func (d DisplayConfig) VisibleRoles(roles []string, show map[string]bool) []string {
	known := make(map[string]bool, len(roles))
	for _, role := range roles {
		known[role] = true
	}
	out := make([]string, 0, len(roles))
	for _, group := range d.Groups {
		visible := group.DefaultVisible
		if override, ok := show[group.ID]; ok {
			visible = override
		}
		if !visible {
			continue
		}
		for _, item := range group.Items {
			if known[item] {
				out = append(out, item)
			}
		}
	}
	return out
}

func (d *DisplayConfig) renameRole(from, to string) {
	for i := range d.Groups {
		for j, item := range d.Groups[i].Items {
			if item == from {
				d.Groups[i].Items[j] = to
			}
		}
	}
	for i, item := range d.Hidden {
		if item == from {
			d.Hidden[i] = to
		}
	}
}

func (d *DisplayConfig) detach(name string) {
	for i := range d.Groups {
		d.Groups[i].Items = removeString(d.Groups[i].Items, name)
	}
	d.Hidden = removeString(d.Hidden, name)
}

func (d *DisplayConfig) ensureUngrouped() *Group {
	if group, ok := d.Group(UngroupedID); ok {
		return group
	}
	d.Groups = append([]Group{{
		ID:             UngroupedID,
		Name:           UngroupedName,
		Items:          []string{},
		DefaultVisible: true,
	}}, d.Groups...)
	return &d.Groups[0]
}

func insertBefore(items []string, name, before string) []string {
	index := -1
	if before != "" {
		index = indexOf(items, before)
	}
	if index < 0 {
		return append(items, name)
	}
	out := make([]string, 0, len(items)+1)
	out = append(out, items[:index]...)
	out = append(out, name)
	return append(out, items[index:]...)
}

// EditDisplay applies fn to a copy of the display config, prunes and
// reconciles it against the role list, stores it and swaps it in. When fn or
// the write fails the current config is kept.
func (s *Session) EditDisplay(ctx context.Context, fn func(*DisplayConfig) error) error {
	s.mu.Lock()
	defer s.unlock()
	return s.editDisplay(ctx, fn)
}

// NewGroupID returns a fresh display group id. Empty groups are pruned on
// save, so add the group and move roles into it in one EditDisplay call.
func (s *Session) NewGroupID() string {
	return s.cfg.groupID()
}

func (s *Session) editDisplay(ctx context.Context, fn func(*DisplayConfig) error) error {
	if fn == nil {
		return nil
	}
	draft := s.display.Clone()
	if err := fn(&draft); err != nil {
		return err
	}
	draft.Prune()
	draft.Reconcile(s.roles)

	current := s.display
	s.display = draft
	if err := s.persistMetadata(ctx, "display.update"); err != nil {
		s.display = current
		return err
	}
	s.emit(ctx, change{verb: activity.VerbDisplayUpdated})
	return nil
}
