package registry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-roster/pkg/registry"
)

func TestMemoryRegistryListReturnsCopies(t *testing.T) {
	reg := registry.NewMemoryRegistry(registry.User{
		Name:       "Alice",
		ServeTypes: map[string][]string{"sunday": {"Lead"}},
	})

	users, err := reg.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	users["Alice"].ServeTypes["sunday"][0] = "changed"

	again, _ := reg.ListUsers(context.Background())
	if got := again["Alice"].Serves("sunday"); len(got) != 1 || got[0] != "Lead" {
		t.Fatalf("expected registry detached from caller, got %v", got)
	}

	if err := reg.Put(registry.User{Name: " "}); !errors.Is(err, registry.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if err := reg.Remove("Nobody"); !errors.Is(err, registry.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFileRegistryMissingFileIsEmpty(t *testing.T) {
	reg := registry.NewFileRegistry(filepath.Join(t.TempDir(), "users.json"))
	users, err := reg.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected empty registry, got %v", users)
	}
}

func TestFileRegistryAddGrantRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "users.json")
	reg := registry.NewFileRegistry(path)

	if err := reg.Add(registry.User{Name: "Alice"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Add(registry.User{Name: "Alice"}); !errors.Is(err, registry.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if err := reg.Grant("Alice", "sunday", "Lead", "Piano", "Lead"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := reg.Grant("Bob", "sunday", "Drums"); err != nil {
		t.Fatalf("grant new user: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected registry file: %v", err)
	}

	users, err := registry.NewFileRegistry(path).ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := users["Alice"].Serves("sunday"); len(got) != 2 || got[0] != "Lead" || got[1] != "Piano" {
		t.Fatalf("unexpected Alice roles: %v", got)
	}
	if got := users["Bob"].Serves("sunday"); len(got) != 1 || got[0] != "Drums" {
		t.Fatalf("unexpected Bob roles: %v", got)
	}

	if err := reg.Remove("Bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := reg.Remove("Bob"); !errors.Is(err, registry.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFileRegistryReadsServeTypesField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	raw := `{"users":[{"name":"Carol","serve_types":{"sunday":["Lead"],"midweek":["Piano"]}}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	users, err := registry.NewFileRegistry(path).ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := users["Carol"].Serves("midweek"); len(got) != 1 || got[0] != "Piano" {
		t.Fatalf("unexpected roles: %v", got)
	}
}
