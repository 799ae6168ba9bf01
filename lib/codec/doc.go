// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration for timekeep's on-disk
// state.
//
// The file-backed persistence store writes its whole key space as one
// CBOR map. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The same key space always produces the same
// bytes, so an unchanged store is never rewritten with a different
// checksum and diffs between snapshots are meaningful.
//
// The decoder rejects duplicate map keys. A snapshot with a duplicated
// key was not produced by this package and is treated as corrupt by the
// caller rather than silently resolved to one of the values.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types serialized only through this package carry `cbor` struct tags.
package codec
