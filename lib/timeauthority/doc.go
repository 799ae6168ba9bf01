// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package timeauthority answers one question for the clock engine:
// what time does an external authority say it is right now?
//
// [Authority] has a single method and a single failure mode. How an
// implementation arrives at its instant (one request or several, JSON
// or headers) is its own business:
//
//   - [IPTimeAPI] resolves the client's public address through ipify
//     and asks timeapi.io for the current time at that address.
//   - [HTTPDate] issues a HEAD request and reads the Date response
//     header, which any HTTP server sets. Resolution is one second.
//   - [Func] adapts a function, for tests and for disabling sync.
//
// None of the implementations compensate for request latency; the
// returned instant is whatever the server reported.
package timeauthority
