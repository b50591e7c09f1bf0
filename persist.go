package roster

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-roster/pkg/store"
)

// write is one document operation. A nil fields deletes the key.
type write struct {
	key    string
	fields store.Fields
}

func putWrite(key string, fields store.Fields) write {
	if fields == nil {
		fields = store.Fields{}
	}
	return write{key: key, fields: fields}
}

func deleteWrite(key string) write {
	return write{key: key}
}

func (s *Session) rowWrite(row Row) write {
	return putWrite(row.Date.String(), encodeRow(row, s.roles))
}

func (s *Session) rowWrites() []write {
	writes := make([]write, 0, len(s.rows)+1)
	for _, row := range s.rows {
		writes = append(writes, s.rowWrite(row))
	}
	return writes
}

func (s *Session) metadataWrite() (write, error) {
	fields, err := encodeMetadata(s.roles, s.infoColumns(), s.display)
	if err != nil {
		return write{}, &StoreError{Op: "metadata.encode", Keys: []string{store.MetadataKey}, Err: err}
	}
	return putWrite(store.MetadataKey, fields), nil
}

// apply runs writes against target and waits for all of them. Multiple
// writes run concurrently; every failure is collected into one StoreError.
func (s *Session) apply(ctx context.Context, target store.Store, op string, writes []write) error {
	start := time.Now()
	errs := make([]error, len(writes))
	run := func(i int) {
		w := writes[i]
		if w.fields == nil {
			errs[i] = target.Delete(ctx, w.key)
			return
		}
		errs[i] = target.Put(ctx, w.key, w.fields)
	}

	if len(writes) == 1 {
		run(0)
	} else {
		var wg sync.WaitGroup
		for i := range writes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				run(i)
			}(i)
		}
		wg.Wait()
	}

	var failed []string
	var joined []error
	for i, err := range errs {
		if err != nil {
			failed = append(failed, writes[i].key)
			joined = append(joined, err)
		}
	}
	var err error
	if len(failed) > 0 {
		err = &StoreError{
			Op:           op,
			Keys:         failed,
			Inconsistent: len(failed) < len(writes),
			Err:          errors.Join(joined...),
		}
	}
	s.logOp(op, len(writes), start, err)
	return err
}

func (s *Session) logOp(op string, documents int, start time.Time, err error) {
	s.cfg.logger.LogMutation(MutationLogEvent{
		Op:        op,
		Source:    s.cfg.sourceID,
		Documents: documents,
		Duration:  time.Since(start),
		Err:       err,
	})
}
