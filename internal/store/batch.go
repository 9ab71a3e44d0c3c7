package store

import (
	"context"
	"sync"
)

type op struct {
	key    string
	value  string
	remove bool
}

// Batch is an ordered set of key/value writes applied atomically.
type Batch struct {
	ops []op
}

// Set queues a write of value under key.
func (b *Batch) Set(key, value string) {
	b.ops = append(b.ops, op{key: key, value: value})
}

// Remove queues a delete of key.
func (b *Batch) Remove(key string) {
	b.ops = append(b.ops, op{key: key, remove: true})
}

// Len returns the number of queued operations.
func (b Batch) Len() int {
	return len(b.ops)
}

// Memory is a volatile key/value store with the same contract as Store.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

// Get returns the value stored under key and whether it exists.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Apply writes every operation of the batch.
func (m *Memory) Apply(_ context.Context, b Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range b.ops {
		if o.remove {
			delete(m.data, o.key)
			continue
		}
		m.data[o.key] = o.value
	}
	return nil
}
