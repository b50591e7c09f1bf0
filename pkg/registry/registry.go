// Package registry provides the read-only user lookup consulted by the roster
// advisory check, plus a file-backed implementation operators can maintain.
package registry

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("registry: user not found")

	// ErrUserExists indicates a user with that name already exists.
	ErrUserExists = errors.New("registry: user already exists")

	// ErrInvalidName indicates the user name is empty.
	ErrInvalidName = errors.New("registry: invalid user name")
)

// User lists the roles a person is registered to serve, keyed by roster id.
type User struct {
	Name       string              `json:"name" yaml:"name"`
	ServeTypes map[string][]string `json:"serve_types" yaml:"serve_types"`
}

// Serves reports the roles registered for rosterID.
func (u User) Serves(rosterID string) []string {
	return append([]string{}, u.ServeTypes[rosterID]...)
}

// Registry is the User Registry port.
type Registry interface {
	ListUsers(ctx context.Context) (map[string]User, error)
}

// RegistryFunc adapts a function to Registry.
type RegistryFunc func(ctx context.Context) (map[string]User, error)

func (f RegistryFunc) ListUsers(ctx context.Context) (map[string]User, error) {
	return f(ctx)
}

func cloneUser(u User) User {
	out := User{Name: u.Name, ServeTypes: make(map[string][]string, len(u.ServeTypes))}
	for rosterID, roles := range u.ServeTypes {
		out.ServeTypes[rosterID] = append([]string{}, roles...)
	}
	return out
}
