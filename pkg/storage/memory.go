package storage

import (
	"context"
	"errors"
	"maps"
	"sync"
)

var errBackendClosed = errors.New("backend closed")

// MemoryBackend keeps namespaces in process memory. Its lifetime is the
// lifetime of the process.
type MemoryBackend struct {
	mu     sync.Mutex
	data   map[string]map[string][]byte
	closed bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string][]byte)}
}

func (m *MemoryBackend) Load(ctx context.Context, namespace string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, TornDown(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, TornDown(errBackendClosed)
	}
	return cloneRecords(m.data[namespace]), nil
}

func (m *MemoryBackend) Update(ctx context.Context, namespace string, fn func(map[string][]byte) error) error {
	if err := ctx.Err(); err != nil {
		return TornDown(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return TornDown(errBackendClosed)
	}

	next := cloneRecords(m.data[namespace])
	if err := fn(next); err != nil {
		return err
	}
	m.data[namespace] = next
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func cloneRecords(in map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(in))
	maps.Copy(out, in)
	return out
}
