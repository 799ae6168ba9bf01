// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/timekeep/lib/codec"
)

// snapshotVersion is written into every file snapshot. A file with a
// different version is treated as corrupt.
const snapshotVersion = 1

// fileSnapshot is the on-disk form of a File store.
type fileSnapshot struct {
	Version int               `cbor:"version"`
	Entries map[string]string `cbor:"entries"`

	// Checksum is the BLAKE3-256 digest of the deterministic encoding
	// of Entries. A snapshot whose entries do not match it is corrupt.
	Checksum []byte `cbor:"checksum"`
}

func entriesChecksum(entries map[string]string) ([]byte, error) {
	data, err := codec.Marshal(entries)
	if err != nil {
		return nil, err
	}
	sum := blake3.Sum256(data)
	return sum[:], nil
}

// FileConfig holds the parameters for opening a File store.
type FileConfig struct {
	// Path is the snapshot file. It is created on first write. The
	// parent directory must exist.
	Path string

	// Logger receives corruption warnings. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// File is a Store that keeps the whole key space in one CBOR file.
//
// Every operation takes an flock on a sibling ".lock" file and reads
// the snapshot from disk, so two processes sharing the path always see
// each other's writes. Writes go to a temporary file that is fsynced
// and renamed into place; readers never see a partial snapshot.
type File struct {
	mu       sync.Mutex
	path     string
	lockFile *os.File
	logger   *slog.Logger
}

// OpenFile opens the File store at cfg.Path. The snapshot itself is
// not read until the first operation.
func OpenFile(cfg FileConfig) (*File, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("kvstore: file: Path is required")
	}
	lockFile, err := os.OpenFile(cfg.Path+".lock", os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("kvstore: file: opening lock file: %w", err)
	}
	return &File{
		path:     cfg.Path,
		lockFile: lockFile,
		logger:   discardLogger(cfg.Logger),
	}, nil
}

func (f *File) Get(key string) (string, bool, error) {
	var value string
	var found bool
	err := f.withLock(unix.LOCK_SH, func() error {
		entries, err := f.read()
		if err != nil {
			return err
		}
		value, found = entries[key]
		return nil
	})
	return value, found, err
}

func (f *File) Set(key, value string) error {
	return f.withLock(unix.LOCK_EX, func() error {
		entries, err := f.read()
		if err != nil {
			return err
		}
		if current, ok := entries[key]; ok && current == value {
			return nil
		}
		entries[key] = value
		return f.write(entries)
	})
}

func (f *File) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return f.withLock(unix.LOCK_EX, func() error {
		entries, err := f.read()
		if err != nil {
			return err
		}
		changed := false
		for _, key := range keys {
			if _, ok := entries[key]; ok {
				delete(entries, key)
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return f.write(entries)
	})
}

func (f *File) GetMany(keys ...string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	err := f.withLock(unix.LOCK_SH, func() error {
		entries, err := f.read()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if value, ok := entries[key]; ok {
				result[key] = value
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Apply rewrites the snapshot once with every change applied.
func (f *File) Apply(changes ...Change) error {
	if len(changes) == 0 {
		return nil
	}
	return f.withLock(unix.LOCK_EX, func() error {
		entries, err := f.read()
		if err != nil {
			return err
		}
		if !applyChanges(entries, changes) {
			return nil
		}
		return f.write(entries)
	})
}

// Close releases the lock file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockFile == nil {
		return nil
	}
	err := f.lockFile.Close()
	f.lockFile = nil
	if err != nil {
		return fmt.Errorf("kvstore: file: closing lock file: %w", err)
	}
	return nil
}

// Raw returns the snapshot bytes as stored on disk, or nil if the file
// does not exist yet.
func (f *File) Raw() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// withLock serializes operations within the process with f.mu and
// across processes with flock(how) on the lock file.
func (f *File) withLock(how int, operation func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lockFile == nil {
		return fmt.Errorf("kvstore: file: store is closed")
	}
	fd := int(f.lockFile.Fd())
	if err := unix.Flock(fd, how); err != nil {
		return fmt.Errorf("kvstore: file: flock: %w", err)
	}
	defer unix.Flock(fd, unix.LOCK_UN)

	return operation()
}

// read loads the snapshot. A missing file is an empty store. A file
// that does not decode is logged and also treated as empty: the next
// write replaces it.
func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: file: reading %s: %w", f.path, err)
	}

	var snapshot fileSnapshot
	if err := codec.Unmarshal(data, &snapshot); err != nil {
		f.logger.Warn("discarding undecodable kv snapshot",
			"path", f.path,
			"error", err,
		)
		return make(map[string]string), nil
	}
	if snapshot.Version != snapshotVersion {
		f.logger.Warn("discarding kv snapshot with unknown version",
			"path", f.path,
			"version", snapshot.Version,
		)
		return make(map[string]string), nil
	}
	if sum, err := entriesChecksum(snapshot.Entries); err != nil || !bytes.Equal(sum, snapshot.Checksum) {
		f.logger.Warn("discarding kv snapshot with mismatched checksum", "path", f.path)
		return make(map[string]string), nil
	}
	if snapshot.Entries == nil {
		snapshot.Entries = make(map[string]string)
	}
	return snapshot.Entries, nil
}

// write replaces the snapshot atomically: temporary file, fsync,
// rename, then fsync of the parent directory so the rename survives a
// power loss.
func (f *File) write(entries map[string]string) error {
	checksum, err := entriesChecksum(entries)
	if err != nil {
		return fmt.Errorf("kvstore: file: checksumming snapshot: %w", err)
	}
	data, err := codec.Marshal(fileSnapshot{Version: snapshotVersion, Entries: entries, Checksum: checksum})
	if err != nil {
		return fmt.Errorf("kvstore: file: encoding snapshot: %w", err)
	}

	temporaryPath := f.path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("kvstore: file: creating temporary snapshot: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("kvstore: file: writing temporary snapshot: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("kvstore: file: syncing temporary snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("kvstore: file: closing temporary snapshot: %w", err)
	}
	if err := os.Rename(temporaryPath, f.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("kvstore: file: renaming snapshot into place: %w", err)
	}

	if directory, err := os.Open(filepath.Dir(f.path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}
