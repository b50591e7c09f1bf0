package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CurrentFileVersion is written into new registry files.
const CurrentFileVersion = 1

// ErrRegistryNotFound indicates the registry file does not exist.
var ErrRegistryNotFound = errors.New("registry: file not found")

type fileDocument struct {
	Version int    `json:"version"`
	Users   []User `json:"users"`
}

// FileRegistry reads and maintains a JSON registry file of the form
// {"version": 1, "users": [{"name": ..., "serve_types": {...}}]}.
type FileRegistry struct {
	mu   sync.Mutex
	path string
}

func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{path: path}
}

// Path returns the registry file location.
func (r *FileRegistry) Path() string {
	return r.path
}

// ListUsers returns every registered user keyed by name. A missing file is an
// empty registry.
func (r *FileRegistry) ListUsers(_ context.Context) (map[string]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadLocked()
	if errors.Is(err, ErrRegistryNotFound) {
		return map[string]User{}, nil
	}
	if err != nil {
		return nil, err
	}
	users := make(map[string]User, len(doc.Users))
	for _, u := range doc.Users {
		users[u.Name] = cloneUser(u)
	}
	return users, nil
}

// Add registers u. Returns ErrUserExists if the name is taken.
func (r *FileRegistry) Add(u User) error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadLocked()
	if err != nil && !errors.Is(err, ErrRegistryNotFound) {
		return err
	}
	for _, existing := range doc.Users {
		if existing.Name == u.Name {
			return fmt.Errorf("%w: %s", ErrUserExists, u.Name)
		}
	}
	doc.Users = append(doc.Users, cloneUser(u))
	return r.saveLocked(doc)
}

// Grant adds roles to the user's serve types for rosterID, creating the user
// when missing.
func (r *FileRegistry) Grant(name, rosterID string, roles ...string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadLocked()
	if err != nil && !errors.Is(err, ErrRegistryNotFound) {
		return err
	}
	idx := -1
	for i := range doc.Users {
		if doc.Users[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		doc.Users = append(doc.Users, User{Name: name, ServeTypes: map[string][]string{}})
		idx = len(doc.Users) - 1
	}
	u := &doc.Users[idx]
	if u.ServeTypes == nil {
		u.ServeTypes = map[string][]string{}
	}
	for _, role := range roles {
		if !containsString(u.ServeTypes[rosterID], role) {
			u.ServeTypes[rosterID] = append(u.ServeTypes[rosterID], role)
		}
	}
	return r.saveLocked(doc)
}

// Remove deletes the user called name.
func (r *FileRegistry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadLocked()
	if err != nil {
		return err
	}
	for i, u := range doc.Users {
		if u.Name == name {
			doc.Users = append(doc.Users[:i], doc.Users[i+1:]...)
			return r.saveLocked(doc)
		}
	}
	return fmt.Errorf("%w: %s", ErrUserNotFound, name)
}

// loadLocked reads the registry file; callers hold r.mu. On ErrRegistryNotFound
// the returned document is an empty, writable registry.
func (r *FileRegistry) loadLocked() (fileDocument, error) {
	empty := fileDocument{Version: CurrentFileVersion, Users: []User{}}
	data, err := os.ReadFile(r.path) //nolint:gosec // path configured by operator
	if err != nil {
		if os.IsNotExist(err) {
			return empty, fmt.Errorf("%w: %s", ErrRegistryNotFound, r.path)
		}
		return empty, fmt.Errorf("registry: reading %s: %w", r.path, err)
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return empty, fmt.Errorf("registry: parsing %s: %w", r.path, err)
	}
	if doc.Version == 0 {
		doc.Version = CurrentFileVersion
	}
	return doc, nil
}

func (r *FileRegistry) saveLocked(doc fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("registry: creating directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: encoding: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil { //nolint:gosec // registry is not secret
		return fmt.Errorf("registry: writing %s: %w", r.path, err)
	}
	return nil
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
