package objectstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Object is a stored payload held by Memory.
type Object struct {
	Data        []byte
	ContentType string
}

// Memory keeps objects in process memory. It backs the "memory" backend used
// for dry runs and tests.
type Memory struct {
	mu      sync.Mutex
	name    string
	objects map[string]Object
}

// NewMemory returns an empty in-memory store.
func NewMemory(container string) *Memory {
	return &Memory{name: container, objects: make(map[string]Object)}
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("memory put %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return fmt.Errorf("memory put %s: %w", key, ErrObjectExists)
	}
	m.objects[key] = Object{Data: data, ContentType: opts.ContentType}
	return nil
}

// Seed stores data under key without the existence precondition.
func (m *Memory) Seed(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Data: append([]byte(nil), data...)}
}

// Get returns the object stored under key.
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Keys lists stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Memory) Container() string { return m.name }

func (m *Memory) Close() error { return nil }
