// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"maps"
	"sync"
)

// Memory is an in-process Store. Its contents vanish with the process,
// so it is the stand-in for a persistent backend in tests: two engines
// constructed over the same Memory behave like a process before and
// after a restart.
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *Memory) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *Memory) GetMany(keys ...string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := m.entries[key]; ok {
			result[key] = value
		}
	}
	return result, nil
}

func (m *Memory) Apply(changes ...Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	applyChanges(m.entries, changes)
	return nil
}

func (m *Memory) Close() error { return nil }

// Entries returns a copy of the store's contents.
func (m *Memory) Entries() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.entries)
}
