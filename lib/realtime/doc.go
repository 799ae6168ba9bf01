// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package realtime maintains a wall clock corrected against an
// external time authority.
//
// The engine holds one signed offset, authority time minus local time,
// and publishes local time plus that offset. The offset is computed as
// the authority's answer minus the local clock read immediately after
// the answer arrived. Request latency is not compensated: a reply that
// took 300ms to arrive leaves the corrected clock up to 300ms behind
// the authority. A failed query sets the offset to zero, which means
// trusting the local clock; it is logged and never returned.
//
// Ticks are aligned to second boundaries of corrected time rather than
// scheduled at a fixed period. Each tick schedules the next one for
// 1s - (corrected mod 1s), so a tick that fires late is followed by a
// shorter wait and the displayed seconds change when the real second
// changes. The same tick notices when ResyncInterval has passed since
// the last sync and starts a background sync without interrupting the
// schedule; the engine therefore owns exactly one timer.
//
// Syncs may overlap (a periodic resync and an operator request). Each
// is numbered when it begins, and a result is applied only if no later
// sync has begun since.
package realtime
