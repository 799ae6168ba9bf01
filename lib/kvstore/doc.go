// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package kvstore is the durable key-value store the timekeeping
// engines persist their anchors in.
//
// The contract is deliberately small: string keys, string values, and
// absence as a first-class answer. Every key is optional. A caller that
// finds a key missing treats the corresponding field as unset, and a
// caller that makes a field inapplicable deletes its key rather than
// writing a sentinel.
//
// Three backends implement [Store]:
//
//   - [Memory] keeps everything in a map. Tests and `--store memory`.
//   - [SQLite] keeps a single kv table in a WAL-mode SQLite database
//     through a zombiezen connection pool. The default backend.
//   - [File] keeps the whole key space as one deterministic CBOR map,
//     rewritten atomically under an exclusive flock so that two
//     timekeep processes sharing a file never interleave writes. A
//     BLAKE3 checksum over the entries detects a damaged snapshot.
//
// [Namespace] prefixes keys so each engine sees only its own slice of
// the key space.
package kvstore
