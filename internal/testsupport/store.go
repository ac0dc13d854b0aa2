package testsupport

import (
	"context"
	"io"
	"sync"

	"filewatcher/internal/objectstore"
)

// FakeStore wraps an in-memory store with failure injection and call tracking.
type FakeStore struct {
	*objectstore.Memory

	mu sync.Mutex
	// ExistsErr, when set, is returned by every Exists call.
	ExistsErr error
	// PutErr, when set, is consulted before each Put. A non-nil result fails
	// the write without storing anything.
	PutErr func(key string) error
	// AlwaysExists makes every Exists call report true.
	AlwaysExists bool

	ExistsCalls []string
	PutCalls    []string
}

// NewFakeStore returns an empty fake store for container.
func NewFakeStore(container string) *FakeStore {
	return &FakeStore{Memory: objectstore.NewMemory(container)}
}

func (f *FakeStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	f.ExistsCalls = append(f.ExistsCalls, key)
	existsErr, always := f.ExistsErr, f.AlwaysExists
	f.mu.Unlock()
	if existsErr != nil {
		return false, existsErr
	}
	if always {
		return true, nil
	}
	return f.Memory.Exists(ctx, key)
}

func (f *FakeStore) Put(ctx context.Context, key string, body io.Reader, opts objectstore.PutOptions) error {
	f.mu.Lock()
	f.PutCalls = append(f.PutCalls, key)
	hook := f.PutErr
	f.mu.Unlock()
	if hook != nil {
		if err := hook(key); err != nil {
			return err
		}
	}
	return f.Memory.Put(ctx, key, body, opts)
}
