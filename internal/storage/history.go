package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/yndnr/padbreak/internal/core/domain"
)

const (
	batchPrefix = "batch/"
	metaKey     = "meta/run"
)

// RunMeta describes the engine configuration a history was built with.
// Resuming under a different configuration mixes incompatible evidence.
type RunMeta struct {
	Allowed     string `json:"allowed"`
	Placeholder string `json:"placeholder"`
	Cribs       int    `json:"cribs"`
	CreatedAt   int64  `json:"created_at"`
}

// HistoryStore persists batch records. Records are keyed by batch ID;
// batch IDs are ULIDs, so a prefix scan returns them in processing order.
type HistoryStore struct {
	kv KVEngine
}

// NewHistoryStore wraps kv.
func NewHistoryStore(kv KVEngine) *HistoryStore {
	return &HistoryStore{kv: kv}
}

func batchKey(id string) []byte {
	return []byte(batchPrefix + id)
}

// Commit atomically rewrites the previous record (after revocations) and
// appends rec. previous may be nil.
func (s *HistoryStore) Commit(ctx context.Context, previous *domain.BatchRecord, rec domain.BatchRecord) error {
	entries := make([]Entry, 0, 2)
	if previous != nil {
		data, err := json.Marshal(previous)
		if err != nil {
			return domain.ErrStorage.WithDetails("encode record " + previous.ID).WithCause(err)
		}
		entries = append(entries, Entry{Key: batchKey(previous.ID), Value: data})
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return domain.ErrStorage.WithDetails("encode record " + rec.ID).WithCause(err)
	}
	entries = append(entries, Entry{Key: batchKey(rec.ID), Value: data})

	if err := s.kv.SetMany(ctx, entries); err != nil {
		return domain.ErrStorage.WithDetails("write record " + rec.ID).WithCause(err)
	}
	return nil
}

// Get returns the record for id.
func (s *HistoryStore) Get(ctx context.Context, id string) (domain.BatchRecord, error) {
	var rec domain.BatchRecord
	data, err := s.kv.Get(ctx, batchKey(id))
	if errors.Is(err, ErrKeyNotFound) {
		return rec, domain.ErrRecordNotFound.WithDetails(id)
	}
	if err != nil {
		return rec, domain.ErrStorage.WithDetails("read record " + id).WithCause(err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, domain.ErrStorage.WithDetails("decode record " + id).WithCause(err)
	}
	return rec, nil
}

// List returns every record in processing order.
func (s *HistoryStore) List(ctx context.Context) ([]domain.BatchRecord, error) {
	var (
		records []domain.BatchRecord
		decErr  error
	)
	err := s.kv.Scan(ctx, []byte(batchPrefix), func(key, value []byte) bool {
		var rec domain.BatchRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			decErr = fmt.Errorf("decode %s: %w", key, err)
			return false
		}
		if rec.Key == nil {
			rec.Key = domain.KeyMap{}
		}
		records = append(records, rec)
		return true
	})
	if err == nil {
		err = decErr
	}
	if err != nil {
		return nil, domain.ErrStorage.WithDetails("list records").WithCause(err)
	}
	return records, nil
}

// SaveMeta records the run configuration.
func (s *HistoryStore) SaveMeta(ctx context.Context, meta RunMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return domain.ErrStorage.WithDetails("encode run meta").WithCause(err)
	}
	if err := s.kv.Set(ctx, []byte(metaKey), data); err != nil {
		return domain.ErrStorage.WithDetails("write run meta").WithCause(err)
	}
	return nil
}

// LoadMeta returns the recorded run configuration. ok is false for a
// store that has none yet.
func (s *HistoryStore) LoadMeta(ctx context.Context) (meta RunMeta, ok bool, err error) {
	data, err := s.kv.Get(ctx, []byte(metaKey))
	if errors.Is(err, ErrKeyNotFound) {
		return meta, false, nil
	}
	if err != nil {
		return meta, false, domain.ErrStorage.WithDetails("read run meta").WithCause(err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, false, domain.ErrStorage.WithDetails("decode run meta").WithCause(err)
	}
	return meta, true, nil
}

// Export writes a portable backup of the whole history.
func (s *HistoryStore) Export(ctx context.Context, w io.Writer) error {
	if err := s.kv.Backup(ctx, w); err != nil {
		return domain.ErrStorage.WithDetails("export").WithCause(err)
	}
	return nil
}

// Import loads a backup written by Export.
func (s *HistoryStore) Import(ctx context.Context, r io.Reader) error {
	if err := s.kv.Restore(ctx, r); err != nil {
		return domain.ErrStorage.WithDetails("import").WithCause(err)
	}
	return nil
}

// Len returns the number of stored records.
func (s *HistoryStore) Len(ctx context.Context) (int, error) {
	n := 0
	err := s.kv.Scan(ctx, []byte(batchPrefix), func(_, _ []byte) bool {
		n++
		return true
	})
	if err != nil {
		return 0, domain.ErrStorage.WithDetails("count records").WithCause(err)
	}
	return n, nil
}
