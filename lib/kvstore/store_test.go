// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/timekeep/lib/codec"
)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	directory := t.TempDir()

	sqliteStore, err := OpenSQLite(SQLiteConfig{Path: filepath.Join(directory, "state.db")})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	fileStore, err := OpenFile(FileConfig{Path: filepath.Join(directory, "state.cbor")})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	stores := map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqliteStore,
		"file":   fileStore,
	}
	t.Cleanup(func() {
		for name, store := range stores {
			if err := store.Close(); err != nil {
				t.Errorf("%s Close: %v", name, err)
			}
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.Get("stopwatch.accumulated_ms"); err != nil || ok {
				t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
			}

			if err := store.Set("stopwatch.accumulated_ms", "1230"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			value, ok, err := store.Get("stopwatch.accumulated_ms")
			if err != nil || !ok || value != "1230" {
				t.Fatalf("Get = %q, %v, %v; want 1230", value, ok, err)
			}

			if err := store.Set("stopwatch.accumulated_ms", "1730"); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			value, _, _ = store.Get("stopwatch.accumulated_ms")
			if value != "1730" {
				t.Fatalf("after overwrite Get = %q, want 1730", value)
			}

			if err := store.Set("stopwatch.laps", "[1230]"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := store.Delete("stopwatch.accumulated_ms", "stopwatch.laps", "never.set"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			for _, key := range []string{"stopwatch.accumulated_ms", "stopwatch.laps"} {
				if _, ok, _ := store.Get(key); ok {
					t.Errorf("%s still present after Delete", key)
				}
			}

			if err := store.Delete(); err != nil {
				t.Errorf("Delete with no keys: %v", err)
			}
		})
	}
}

func TestStoreEmptyValue(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set("k", ""); err != nil {
				t.Fatalf("Set: %v", err)
			}
			value, ok, err := store.Get("k")
			if err != nil || !ok || value != "" {
				t.Fatalf("Get = %q, %v, %v; want present empty string", value, ok, err)
			}
		})
	}
}

func TestStoreBatches(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set("countdown.end_unix_ms", "1767225690000"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			err := store.Apply(
				Put("countdown.target_ms", "90000"),
				Remove("countdown.end_unix_ms"),
				Put("countdown.paused_remaining_ms", "80000"),
				Remove("never.set"),
			)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}

			values, err := store.GetMany("countdown.target_ms", "countdown.end_unix_ms", "countdown.paused_remaining_ms")
			if err != nil {
				t.Fatalf("GetMany: %v", err)
			}
			want := map[string]string{
				"countdown.target_ms":           "90000",
				"countdown.paused_remaining_ms": "80000",
			}
			if !maps.Equal(values, want) {
				t.Fatalf("GetMany = %v, want %v", values, want)
			}

			if err := store.Apply(); err != nil {
				t.Errorf("Apply with no changes: %v", err)
			}
			if values, err := store.GetMany(); err != nil || len(values) != 0 {
				t.Errorf("GetMany with no keys = %v, %v", values, err)
			}
		})
	}
}

func TestNamespace(t *testing.T) {
	memory := NewMemory()
	stopwatch := Namespace(memory, "stopwatch")
	countdown := Namespace(memory, "countdown.")

	stopwatch.Set("accumulated_ms", "5")
	countdown.Set("target_ms", "90000")

	entries := memory.Entries()
	if entries["stopwatch.accumulated_ms"] != "5" || entries["countdown.target_ms"] != "90000" {
		t.Fatalf("entries = %v", entries)
	}
	if _, ok, _ := stopwatch.Get("target_ms"); ok {
		t.Error("namespaces leaked into each other")
	}

	countdown.Delete("target_ms")
	if _, ok, _ := memory.Get("countdown.target_ms"); ok {
		t.Error("namespaced Delete did not reach the inner store")
	}

	countdown.Apply(Put("target_ms", "60000"), Put("end_unix_ms", "1767225660000"))
	values, _ := countdown.GetMany("target_ms", "end_unix_ms", "accumulated_ms")
	if !maps.Equal(values, map[string]string{"target_ms": "60000", "end_unix_ms": "1767225660000"}) {
		t.Errorf("namespaced GetMany = %v", values)
	}
	if memory.Entries()["countdown.end_unix_ms"] != "1767225660000" {
		t.Error("namespaced Apply did not prefix its keys")
	}

	stopwatch.Close()
	if _, ok, _ := memory.Get("stopwatch.accumulated_ms"); !ok {
		t.Error("closing a namespace must not affect the inner store")
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := OpenSQLite(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.Set("countdown.end_unix_ms", "1767225605000"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := OpenSQLite(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	value, ok, err := second.Get("countdown.end_unix_ms")
	if err != nil || !ok || value != "1767225605000" {
		t.Fatalf("after reopen Get = %q, %v, %v", value, ok, err)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(SQLiteConfig{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileSharedBetweenInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.cbor")

	writer, err := OpenFile(FileConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer writer.Close()
	reader, err := OpenFile(FileConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer reader.Close()

	if err := writer.Set("view.active", "countdown"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := reader.Get("view.active")
	if err != nil || !ok || value != "countdown" {
		t.Fatalf("second instance Get = %q, %v, %v", value, ok, err)
	}
}

func TestFileCorruptSnapshotTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.cbor")
	if err := os.WriteFile(path, []byte("definitely not cbor"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store, err := OpenFile(FileConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get("stopwatch.laps"); err != nil || ok {
		t.Fatalf("Get on corrupt snapshot = ok %v, err %v; want absent", ok, err)
	}

	if err := store.Set("stopwatch.laps", "[]"); err != nil {
		t.Fatalf("Set over corrupt snapshot: %v", err)
	}
	raw, err := store.Raw()
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if strings.Contains(string(raw), "definitely") {
		t.Fatal("corrupt snapshot was not replaced")
	}
}

func TestFileChecksumMismatchTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.cbor")
	store, err := OpenFile(FileConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer store.Close()
	if err := store.Set("countdown.end_unix_ms", "1767268800000"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Rewrite one value while keeping the stale checksum, as a
	// flipped bit on disk would.
	raw, err := store.Raw()
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	var snapshot fileSnapshot
	if err := codec.Unmarshal(raw, &snapshot); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if len(snapshot.Checksum) != 32 {
		t.Fatalf("checksum length = %d, want 32", len(snapshot.Checksum))
	}
	snapshot.Entries["countdown.end_unix_ms"] = "9767268800000"
	tampered, err := codec.Marshal(snapshot)
	if err != nil {
		t.Fatalf("encoding snapshot: %v", err)
	}
	if err := os.WriteFile(path, tampered, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if value, ok, err := store.Get("countdown.end_unix_ms"); err != nil || ok {
		t.Fatalf("Get on tampered snapshot = %q, ok %v, err %v; want absent", value, ok, err)
	}
}

func TestFileClosedStoreFails(t *testing.T) {
	store, err := OpenFile(FileConfig{Path: filepath.Join(t.TempDir(), "state.cbor")})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	store.Close()
	if err := store.Set("k", "v"); err == nil {
		t.Fatal("Set on closed store should fail")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestOpenBackends(t *testing.T) {
	directory := t.TempDir()
	for _, backend := range []Backend{BackendMemory, BackendSQLite, BackendFile} {
		store, err := Open(Options{Backend: backend, Path: filepath.Join(directory, string(backend))})
		if err != nil {
			t.Fatalf("Open(%s): %v", backend, err)
		}
		store.Close()
	}
	if _, err := Open(Options{Backend: "etcd"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
