// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"fmt"
	"log/slog"
	"strings"
)

// Store is a string-valued key-value store.
//
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent;
	// err is reserved for backend failures.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes keys. Deleting an absent key is not an error.
	Delete(keys ...string) error

	// GetMany returns the values of the present keys among keys, read
	// from a single consistent state of the store.
	GetMany(keys ...string) (map[string]string, error)

	// Apply performs every change atomically: a concurrent reader
	// observes all of them or none.
	Apply(changes ...Change) error

	// Close releases backend resources.
	Close() error
}

// Change is one write in an Apply batch.
type Change struct {
	Key   string
	Value string

	// Delete removes Key instead of setting it; Value is ignored.
	Delete bool
}

// Put returns a Change that sets key to value.
func Put(key, value string) Change {
	return Change{Key: key, Value: value}
}

// Remove returns a Change that deletes key.
func Remove(key string) Change {
	return Change{Key: key, Delete: true}
}

// Backend names a Store implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Options configures Open.
type Options struct {
	Backend Backend

	// Path is the database or snapshot file. Ignored by the memory
	// backend. The parent directory must exist.
	Path string

	// Logger receives operational messages. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Open opens the backend named in options.
func Open(options Options) (Store, error) {
	switch options.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(SQLiteConfig{Path: options.Path, Logger: options.Logger})
	case BackendFile:
		return OpenFile(FileConfig{Path: options.Path, Logger: options.Logger})
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", options.Backend)
	}
}

// Namespace returns a view of store whose keys are prefixed with
// prefix and a dot. Closing the view does not close store.
func Namespace(store Store, prefix string) Store {
	return &namespaced{inner: store, prefix: strings.TrimSuffix(prefix, ".") + "."}
}

type namespaced struct {
	inner  Store
	prefix string
}

func (n *namespaced) Get(key string) (string, bool, error) {
	return n.inner.Get(n.prefix + key)
}

func (n *namespaced) Set(key, value string) error {
	return n.inner.Set(n.prefix+key, value)
}

func (n *namespaced) Delete(keys ...string) error {
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = n.prefix + key
	}
	return n.inner.Delete(full...)
}

func (n *namespaced) GetMany(keys ...string) (map[string]string, error) {
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = n.prefix + key
	}
	values, err := n.inner.GetMany(full...)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		result[strings.TrimPrefix(key, n.prefix)] = value
	}
	return result, nil
}

func (n *namespaced) Apply(changes ...Change) error {
	prefixed := make([]Change, len(changes))
	for i, change := range changes {
		change.Key = n.prefix + change.Key
		prefixed[i] = change
	}
	return n.inner.Apply(prefixed...)
}

func (n *namespaced) Close() error { return nil }

func discardLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// applyChanges applies changes to entries in order and reports whether
// anything differs afterwards.
func applyChanges(entries map[string]string, changes []Change) bool {
	changed := false
	for _, change := range changes {
		current, ok := entries[change.Key]
		switch {
		case change.Delete:
			if ok {
				delete(entries, change.Key)
				changed = true
			}
		case !ok || current != change.Value:
			entries[change.Key] = change.Value
			changed = true
		}
	}
	return changed
}
