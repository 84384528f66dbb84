package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"hotel-booking/utils"
)

// MemoryStore is the in-process DocumentStore used in development mode and
// in tests. Snapshots are delivered synchronously on the mutating goroutine.
type MemoryStore struct {
	mu          sync.Mutex
	docs        map[string]json.RawMessage
	collections map[string]map[string]json.RawMessage
	subs        map[string]map[int]func(Snapshot)
	nextSubID   int
	seq         int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:        make(map[string]json.RawMessage),
		collections: make(map[string]map[string]json.RawMessage),
		subs:        make(map[string]map[int]func(Snapshot)),
	}
}

func (m *MemoryStore) Write(ctx context.Context, path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	m.mu.Lock()
	m.docs[path] = data
	fns := m.subscribersLocked(path)
	snapshot := m.snapshotLocked(path)
	m.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

func (m *MemoryStore) Append(ctx context.Context, path string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", path, err)
	}

	m.mu.Lock()
	m.seq++
	code, _ := utils.GenerateCode(4)
	key := fmt.Sprintf("%013d-%04d-%s", time.Now().UnixMilli(), m.seq, code)
	if m.collections[path] == nil {
		m.collections[path] = make(map[string]json.RawMessage)
	}
	m.collections[path][key] = data
	fns := m.subscribersLocked(path)
	snapshot := m.snapshotLocked(path)
	m.mu.Unlock()

	notify(fns, snapshot)
	return key, nil
}

func (m *MemoryStore) SetChild(ctx context.Context, path, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", path, key, err)
	}

	m.mu.Lock()
	if m.collections[path] == nil {
		m.collections[path] = make(map[string]json.RawMessage)
	}
	m.collections[path][key] = data
	fns := m.subscribersLocked(path)
	snapshot := m.snapshotLocked(path)
	m.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

func (m *MemoryStore) Collection(ctx context.Context, path string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(path), nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (Unsubscribe, error) {
	m.mu.Lock()
	if m.subs[path] == nil {
		m.subs[path] = make(map[int]func(Snapshot))
	}
	m.nextSubID++
	id := m.nextSubID
	m.subs[path][id] = fn
	snapshot := m.snapshotLocked(path)
	m.mu.Unlock()

	fn(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[path], id)
			m.mu.Unlock()
		})
	}, nil
}

func (m *MemoryStore) snapshotLocked(path string) Snapshot {
	entries := m.collections[path]
	snapshot := make(Snapshot, len(entries))
	for key, raw := range entries {
		snapshot[key] = raw
	}
	return snapshot
}

func (m *MemoryStore) subscribersLocked(path string) []func(Snapshot) {
	fns := make([]func(Snapshot), 0, len(m.subs[path]))
	for _, fn := range m.subs[path] {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(Snapshot), snapshot Snapshot) {
	for _, fn := range fns {
		fn(snapshot)
	}
}
