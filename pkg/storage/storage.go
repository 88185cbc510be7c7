// Package storage persists reading records in a bounded, URL-keyed
// collection with least-recently-updated eviction.
package storage

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dtnitsch/readtime/models"
)

const (
	DefaultCapacity  = 100
	DefaultNamespace = "readtime_articles"
)

// ErrContextTornDown marks failures caused by the store's host going away
// mid-operation: a closed backend, a closed connection or a cancelled
// context. Retrying does not help.
var ErrContextTornDown = errors.New("storage context torn down")

// TornDown wraps err so that errors.Is(err, ErrContextTornDown) holds.
func TornDown(err error) error {
	return fmt.Errorf("%w: %w", ErrContextTornDown, err)
}

// Backend is the persistence medium behind a Store. Values are opaque
// encoded records keyed by URL within a namespace.
type Backend interface {
	// Load returns every value stored under namespace.
	Load(ctx context.Context, namespace string) (map[string][]byte, error)
	// Update runs fn on the current contents of namespace and persists the
	// changes fn made to the map as one atomic read-modify-write. fn may be
	// invoked more than once if the backend retries.
	Update(ctx context.Context, namespace string, fn func(records map[string][]byte) error) error
	Close() error
}

// Store is a bounded reading-record store keyed by URL.
type Store struct {
	backend   Backend
	namespace string
	capacity  int
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the maximum number of records kept.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithNamespace sets the collection the store reads and writes.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.namespace = ns
		}
	}
}

// WithLogger sets the logger for store failures and debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store on top of backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		namespace: DefaultNamespace,
		capacity:  DefaultCapacity,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the maximum number of records kept.
func (s *Store) Capacity() int { return s.capacity }

// Namespace returns the collection the store reads and writes.
func (s *Store) Namespace() string { return s.namespace }

// Admit reports whether progress is high enough to be worth saving.
func (s *Store) Admit(progress float64) bool {
	return progress > models.AdmissionThreshold
}

// Save upserts rec by URL and evicts the oldest records beyond capacity.
// Completed is recomputed from Progress and a zero Timestamp is replaced by
// the current write time. Failures are logged and reported as false.
func (s *Store) Save(ctx context.Context, rec models.ReadingRecord) bool {
	if rec.URL == "" {
		s.logger.Warn("refusing to save record without url")
		return false
	}
	rec = s.stamp(rec.Normalize())

	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("failed to encode reading record", "url", rec.URL, "error", err)
		return false
	}

	var evicted []string
	err = s.backend.Update(ctx, s.namespace, func(records map[string][]byte) error {
		records[rec.URL] = payload
		evicted = s.evict(records)
		return nil
	})
	if err != nil {
		s.logFailure("save", err, "url", rec.URL)
		return false
	}

	if len(evicted) > 0 {
		s.logger.Debug("evicted reading records", "count", len(evicted), "capacity", s.capacity)
	}
	s.logger.Debug("saved reading progress", "url", rec.URL, "progress", rec.Progress, "completed", rec.Completed)
	return true
}

// Get returns the record stored for url.
func (s *Store) Get(ctx context.Context, url string) (models.ReadingRecord, bool) {
	records, err := s.backend.Load(ctx, s.namespace)
	if err != nil {
		s.logFailure("get", err, "url", url)
		return models.ReadingRecord{}, false
	}
	raw, ok := records[url]
	if !ok {
		return models.ReadingRecord{}, false
	}
	return s.decode(url, raw)
}

// GetAll returns every well-formed record keyed by URL. Backend failures
// yield an empty map.
func (s *Store) GetAll(ctx context.Context) map[string]models.ReadingRecord {
	out := make(map[string]models.ReadingRecord)
	records, err := s.backend.Load(ctx, s.namespace)
	if err != nil {
		s.logFailure("get all", err)
		return out
	}
	for key, raw := range records {
		if rec, ok := s.decode(key, raw); ok {
			out[rec.URL] = rec
		}
	}
	return out
}

// Delete removes the record for url. Deleting an absent URL is a no-op.
func (s *Store) Delete(ctx context.Context, url string) {
	err := s.backend.Update(ctx, s.namespace, func(records map[string][]byte) error {
		delete(records, url)
		return nil
	})
	if err != nil {
		s.logFailure("delete", err, "url", url)
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// stamp assigns a strictly increasing write time to records that carry none.
func (s *Store) stamp(rec models.ReadingRecord) models.ReadingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Timestamp <= 0 {
		ts := s.now().UnixMilli()
		if ts <= s.lastStamp {
			ts = s.lastStamp + 1
		}
		rec.Timestamp = ts
	}
	s.lastStamp = max(s.lastStamp, rec.Timestamp)
	return rec
}

type stamped struct {
	url       string
	timestamp int64
}

// evict trims records down to capacity, keeping the most recently updated.
// Undecodable values sort as oldest. It returns the removed keys.
func (s *Store) evict(records map[string][]byte) []string {
	if len(records) <= s.capacity {
		return nil
	}

	entries := make([]stamped, 0, len(records))
	for url, raw := range records {
		var head struct {
			Timestamp int64 `json:"timestamp"`
		}
		_ = json.Unmarshal(raw, &head)
		entries = append(entries, stamped{url: url, timestamp: head.Timestamp})
	}

	slices.SortFunc(entries, func(a, b stamped) int {
		if c := cmp.Compare(b.timestamp, a.timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.url, b.url)
	})

	var removed []string
	for _, e := range entries[s.capacity:] {
		delete(records, e.url)
		removed = append(removed, e.url)
	}
	return removed
}

// decode parses a stored value, skipping malformed records. A record is
// only valid under the key of its own URL.
func (s *Store) decode(key string, raw []byte) (models.ReadingRecord, bool) {
	var rec models.ReadingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Debug("skipping malformed reading record", "key", key, "error", err)
		return models.ReadingRecord{}, false
	}
	if !rec.Valid() {
		s.logger.Debug("skipping malformed reading record", "key", key, "reason", "missing url or timestamp")
		return models.ReadingRecord{}, false
	}
	if rec.URL != key {
		s.logger.Debug("skipping malformed reading record", "key", key, "reason", "url does not match key", "url", rec.URL)
		return models.ReadingRecord{}, false
	}
	return rec, true
}

func (s *Store) logFailure(op string, err error, args ...any) {
	args = append(args, "op", op, "error", err)
	if errors.Is(err, ErrContextTornDown) {
		s.logger.Warn("store unavailable, host context was torn down", args...)
		return
	}
	s.logger.Error("store operation failed", args...)
}

// Diff returns the keys removed from before and the entries added or changed
// in after. Backends use it to write only what an update touched.
func Diff(before, after map[string][]byte) (removed []string, changed map[string][]byte) {
	changed = make(map[string][]byte)
	for key := range before {
		if _, ok := after[key]; !ok {
			removed = append(removed, key)
		}
	}
	for key, val := range after {
		if old, ok := before[key]; !ok || !bytes.Equal(old, val) {
			changed[key] = val
		}
	}
	slices.Sort(removed)
	return removed, changed
}
