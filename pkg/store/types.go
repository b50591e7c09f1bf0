package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MetadataKey holds the role list, info column names and display config.
const MetadataKey = "_metadata"

// ReservedPrefix marks keys that never hold roster rows.
const ReservedPrefix = "_"

var ErrInvalidKey = errors.New("store: invalid key")

// Fields is the raw payload of one document.
type Fields map[string]any

// Document pairs a key with its fields, as returned by Query.
type Document struct {
	Key    string
	Fields Fields
}

// Range selects keys in [From, To). Empty bounds are open; Limit 0 returns all
// matches. Results are always ordered by key ascending.
type Range struct {
	From  string
	To    string
	Limit int
}

// Store is the RosterStore port.
type Store interface {
	Get(ctx context.Context, key string) (fields Fields, ok bool, err error)
	Put(ctx context.Context, key string, fields Fields) error
	Delete(ctx context.Context, key string) error
	Query(ctx context.Context, r Range) ([]Document, error)
}

// IsReserved reports whether key can never be a roster row.
func IsReserved(key string) bool {
	return strings.HasPrefix(key, ReservedPrefix)
}

// ValidateKey rejects keys that cannot be stored portably.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, "/\\\x00") || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Contains reports whether key falls inside r.
func (r Range) Contains(key string) bool {
	if r.From != "" && key < r.From {
		return false
	}
	if r.To != "" && key >= r.To {
		return false
	}
	return true
}

// Select filters, orders and limits docs according to r. It is shared by the
// adapters that cannot push the range down to their backend.
func (r Range) Select(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if r.Contains(doc.Key) {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if r.Limit > 0 && len(out) > r.Limit {
		out = out[:r.Limit]
	}
	return out
}

// CloneFields returns a deep copy of fields, detaching nested slices and maps.
func CloneFields(fields Fields) Fields {
	if fields == nil {
		return nil
	}
	out := make(Fields, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case []string:
		return append([]string{}, typed...)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = cloneValue(item)
		}
		return out
	case Fields:
		return CloneFields(typed)
	case map[string][]string:
		out := make(map[string][]string, len(typed))
		for k, item := range typed {
			out[k] = append([]string{}, item...)
		}
		return out
	default:
		return v
	}
}
