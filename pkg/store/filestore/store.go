// Package filestore keeps one JSON file per document inside a directory. A
// lock file next to the documents (github.com/gofrs/flock) serialises writers
// across processes, so two CLI invocations against the same roster do not
// interleave partial writes. Concurrency remains last-write-wins per document.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/goliatone/go-roster/pkg/store"
)

const (
	lockName   = ".roster.lock"
	fileSuffix = ".json"
)

// ErrLockTimeout indicates the directory lock could not be acquired before ctx
// was done.
var ErrLockTimeout = errors.New("filestore: lock not acquired")

// Store implements store.Store over a directory.
type Store struct {
	dir        string
	lockPath   string
	retryDelay time.Duration
}

// Open prepares dir (creating it when missing) and returns a Store bound to it.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("filestore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create %q: %w", dir, err)
	}
	return &Store{
		dir:        dir,
		lockPath:   filepath.Join(dir, lockName),
		retryDelay: 20 * time.Millisecond,
	}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Get(ctx context.Context, key string) (store.Fields, bool, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, false, err
	}
	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	return s.read(key)
}

func (s *Store) Put(ctx context.Context, key string, fields store.Fields) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if fields == nil {
		fields = store.Fields{}
	}
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode %q: %w", key, err)
	}

	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("filestore: temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filestore: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: rename %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, r store.Range) ([]store.Document, error) {
	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("filestore: list %q: %w", s.dir, err)
	}

	docs := make([]store.Document, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) || strings.HasPrefix(name, ".") {
			continue
		}
		key := strings.TrimSuffix(name, fileSuffix)
		if !r.Contains(key) {
			continue
		}
		fields, ok, err := s.read(key)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, store.Document{Key: key, Fields: fields})
		}
	}
	return r.Select(docs), nil
}

func (s *Store) read(key string) (store.Fields, bool, error) {
	data, err := os.ReadFile(s.path(key)) //nolint:gosec // key validated, dir owned by caller
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("filestore: read %q: %w", key, err)
	}
	var fields store.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false, fmt.Errorf("filestore: decode %q: %w", key, err)
	}
	if fields == nil {
		fields = store.Fields{}
	}
	return fields, true, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileSuffix)
}

// acquire takes the directory lock through a handle of its own. flock locks
// belong to the open file, so concurrent calls in one process exclude each
// other the same way separate processes do.
func (s *Store) acquire(ctx context.Context, exclusive bool) (func(), error) {
	lock := flock.New(s.lockPath)
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = lock.TryLockContext(ctx, s.retryDelay)
	} else {
		locked, err = lock.TryRLockContext(ctx, s.retryDelay)
	}
	if err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}
	if !locked {
		_ = lock.Close()
		return nil, ErrLockTimeout
	}
	return func() { _ = lock.Close() }, nil
}
