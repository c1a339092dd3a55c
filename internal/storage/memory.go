package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/reel/internal/shared"
)

var _ Storage = (*MemoryStorage)(nil)

// MemoryBackend keeps slots in a process-local map. Contents do not survive a restart.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string]string
	failures map[Op]error
	hub      *hub
}

// NewMemoryBackend creates an empty [MemoryBackend].
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data:     make(map[string]string),
		failures: make(map[Op]error),
		hub:      newHub(),
	}
}

// NewContext opens a new context with a fresh origin.
func (b *MemoryBackend) NewContext() *MemoryStorage {
	return &MemoryStorage{backend: b, origin: shared.GenerateID()}
}

// Fail makes every subsequent op return err. A nil err clears the failure.
func (b *MemoryBackend) Fail(op Op, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// Close stops delivery to all watchers.
func (b *MemoryBackend) Close() {
	b.hub.close()
}

func (b *MemoryBackend) failure(op Op) error {
	err, ok := b.failures[op]
	if !ok {
		return nil
	}
	if op == OpGet {
		return fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrStorageWrite, op, err)
}

// MemoryStorage is one context of a [MemoryBackend].
type MemoryStorage struct {
	backend *MemoryBackend
	origin  string
}

func (s *MemoryStorage) Origin() string { return s.origin }

func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.failure(OpGet); err != nil {
		return "", false, err
	}
	value, ok := b.data[key]
	return value, ok, nil
}

func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	b := s.backend
	b.mu.Lock()
	if err := b.failure(OpSet); err != nil {
		b.mu.Unlock()
		return err
	}
	b.data[key] = value
	// publish under the lock so watchers see writes in durable order
	b.hub.publish(Change{Key: key, Value: value, Present: true, Origin: s.origin})
	b.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Remove(_ context.Context, key string) error {
	b := s.backend
	b.mu.Lock()
	if err := b.failure(OpRemove); err != nil {
		b.mu.Unlock()
		return err
	}
	defer b.mu.Unlock()

	if _, existed := b.data[key]; existed {
		delete(b.data, key)
		b.hub.publish(Change{Key: key, Origin: s.origin})
	}
	return nil
}

func (s *MemoryStorage) Watch(fn func(Change)) func() {
	return s.backend.hub.watch(s.origin, fn)
}
