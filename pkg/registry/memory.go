package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryRegistry keeps users in memory. It is meant for tests and examples.
type MemoryRegistry struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRegistry(users ...User) *MemoryRegistry {
	r := &MemoryRegistry{users: map[string]User{}}
	for _, u := range users {
		r.users[u.Name] = cloneUser(u)
	}
	return r
}

// Put inserts or replaces u.
func (r *MemoryRegistry) Put(u User) error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrInvalidName
	}
	r.mu.Lock()
	r.users[u.Name] = cloneUser(u)
	r.mu.Unlock()
	return nil
}

// Remove deletes the user called name.
func (r *MemoryRegistry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	delete(r.users, name)
	return nil
}

func (r *MemoryRegistry) ListUsers(_ context.Context) (map[string]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]User, len(r.users))
	for name, u := range r.users {
		out[name] = cloneUser(u)
	}
	return out, nil
}
