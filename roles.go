package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-roster/pkg/activity"
)

// AddRole appends a people role. Every row gets an empty list for it and it
// joins the ungrouped display group.
func (s *Session) AddRole(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.unlock()
	return s.addRole(ctx, name, false)
}

// AddInfoColumn appends a role whose cells hold free text rather than people.
func (s *Session) AddInfoColumn(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.unlock()
	return s.addRole(ctx, name, true)
}

func (s *Session) addRole(ctx context.Context, name string, info bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty role", ErrInvalidName)
	}
	if indexOf(s.roles, name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateRole, name)
	}

	prevDisplay := s.display.Clone()
	s.roles = append(s.roles, name)
	if info {
		s.info[name] = true
	}
	for i := range s.rows {
		s.rows[i].Cells[name] = []string{}
	}
	s.display.Reconcile(s.roles)

	if err := s.persistRolesAndRows(ctx, "role.add"); err != nil {
		s.roles = s.roles[:len(s.roles)-1]
		delete(s.info, name)
		for i := range s.rows {
			delete(s.rows[i].Cells, name)
		}
		s.display = prevDisplay
		return err
	}
	return s.commit(ctx, change{
		verb:  activity.VerbRoleAdded,
		roles: []string{name},
		meta:  map[string]any{"info": info},
	})
}

// RenameRole relabels a role in the role list, every row, the info columns
// and the display config. Renaming to the same name is a no-op.
func (s *Session) RenameRole(ctx context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.unlock()
	newName = strings.TrimSpace(newName)
	if oldName == newName {
		return nil
	}
	at := indexOf(s.roles, oldName)
	if at < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownRole, oldName)
	}
	if newName == "" {
		return fmt.Errorf("%w: empty role", ErrInvalidName)
	}
	if indexOf(s.roles, newName) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateRole, newName)
	}

	s.roles[at] = newName
	if s.info[oldName] {
		delete(s.info, oldName)
		s.info[newName] = true
	}
	for i := range s.rows {
		cells := s.rows[i].Cells
		cells[newName] = cells[oldName]
		if cells[newName] == nil {
			cells[newName] = []string{}
		}
		delete(cells, oldName)
	}
	s.display.renameRole(oldName, newName)
	s.display.Reconcile(s.roles)

	if err := s.persistRolesAndRows(ctx, "role.rename"); err != nil {
		return err
	}
	return s.commit(ctx, change{
		verb:  activity.VerbRoleRenamed,
		roles: []string{oldName, newName},
	})
}

// SetInfoColumn marks role as holding free text (true) or people (false).
func (s *Session) SetInfoColumn(ctx context.Context, role string, info bool) error {
	s.mu.Lock()
	defer s.unlock()
	if indexOf(s.roles, role) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if s.info[role] == info {
		return nil
	}
	if info {
		s.info[role] = true
	} else {
		delete(s.info, role)
		for _, row := range s.rows {
			for _, person := range row.Cells[role] {
				s.people[person] = struct{}{}
				s.colors.Color(person)
			}
		}
	}
	if err := s.persistMetadata(ctx, "role.info"); err != nil {
		return err
	}
	return s.commit(ctx, change{
		verb:  activity.VerbRoleInfoToggled,
		roles: []string{role},
		meta:  map[string]any{"info": info},
	})
}

// DeleteRole removes a role from the role list, every row and the display
// config.
func (s *Session) DeleteRole(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.unlock()
	at := indexOf(s.roles, name)
	if at < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}

	s.roles = append(s.roles[:at:at], s.roles[at+1:]...)
	delete(s.info, name)
	for i := range s.rows {
		delete(s.rows[i].Cells, name)
	}
	s.display.detach(name)
	s.display.Reconcile(s.roles)

	if err := s.persistRolesAndRows(ctx, "role.delete"); err != nil {
		return err
	}
	return s.commit(ctx, change{
		verb:  activity.VerbRoleDeleted,
		roles: []string{name},
	})
}

// ReorderRoles moves the role at from to index to. Only metadata is written;
// rows do not store role order.
func (s *Session) ReorderRoles(ctx context.Context, from, to int) error {
	s.mu.Lock()
	defer s.unlock()
	if from < 0 || from >= len(s.roles) || to < 0 || to >= len(s.roles) {
		return fmt.Errorf("%w: move %d to %d of %d roles", ErrIndexOutOfRange, from, to, len(s.roles))
	}
	if from == to {
		return nil
	}

	role := s.roles[from]
	rest := append(append([]string{}, s.roles[:from]...), s.roles[from+1:]...)
	s.roles = append(append(append([]string{}, rest[:to]...), role), rest[to:]...)

	if err := s.persistMetadata(ctx, "roles.reorder"); err != nil {
		return err
	}
	return s.commit(ctx, change{
		verb:  activity.VerbRolesReordered,
		roles: []string{role},
		meta:  map[string]any{"from": from, "to": to},
	})
}

func (s *Session) persistMetadata(ctx context.Context, op string) error {
	w, err := s.metadataWrite()
	if err != nil {
		return err
	}
	return s.apply(ctx, s.store, op, []write{w})
}

func (s *Session) persistRolesAndRows(ctx context.Context, op string) error {
	w, err := s.metadataWrite()
	if err != nil {
		return err
	}
	return s.apply(ctx, s.store, op, append(s.rowWrites(), w))
}
