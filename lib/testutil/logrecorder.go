// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecorder is a slog.Handler that records every record it receives.
// Attributes added with WithAttrs are folded into each record. Groups
// are ignored.
type LogRecorder struct {
	shared *recorderState
	attrs  []slog.Attr
}

type recorderState struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewLogRecorder returns an empty recorder and a logger writing to it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	recorder := &LogRecorder{shared: &recorderState{}}
	return recorder, slog.New(recorder)
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	record = record.Clone()
	record.AddAttrs(r.attrs...)
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	r.shared.records = append(r.shared.records, record)
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{
		shared: r.shared,
		attrs:  append(append([]slog.Attr(nil), r.attrs...), attrs...),
	}
}

func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Messages returns the messages of records at or above level, in the
// order they were logged.
func (r *LogRecorder) Messages(level slog.Level) []string {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	var messages []string
	for _, record := range r.shared.records {
		if record.Level >= level {
			messages = append(messages, record.Message)
		}
	}
	return messages
}

// Attr returns the value of key on the most recent record with message,
// or false if there is none.
func (r *LogRecorder) Attr(message, key string) (slog.Value, bool) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	for i := len(r.shared.records) - 1; i >= 0; i-- {
		record := r.shared.records[i]
		if record.Message != message {
			continue
		}
		var value slog.Value
		found := false
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == key {
				value, found = attr.Value, true
				return false
			}
			return true
		})
		return value, found
	}
	return slog.Value{}, false
}
