// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-sskr.
//
// go-sskr is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


package storage

import (
	"sort"
	"strings"
	"sync"
)

// MemoryBackend provides an in-memory storage implementation.
// Values are copied on the way in and out, and wiped on Delete and Close.
type MemoryBackend struct {
	data   map[string][]byte
	mu     sync.RWMutex
	closed bool
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemory creates a new in-memory storage backend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

// Get retrieves the value for the given key.
func (m *MemoryBackend) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put stores a copy of value.
func (m *MemoryBackend) Put(key string, value []byte, _ *Options) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if old, ok := m.data[key]; ok {
		wipe(old)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the key and wipes its value.
func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	value, ok := m.data[key]
	if !ok {
		return ErrNotFound
	}
	wipe(value)
	delete(m.data, key)
	return nil
}

// List returns all keys with the given prefix, sorted.
func (m *MemoryBackend) List(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Exists checks if a key exists.
func (m *MemoryBackend) Exists(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrClosed
	}
	_, ok := m.data[key]
	return ok, nil
}

// Close wipes all values and marks the backend closed.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range m.data {
		wipe(v)
		delete(m.data, k)
	}
	m.closed = true
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
