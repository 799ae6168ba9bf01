// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timekeepui

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg carries one formatted log record into the model.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// logRecordFadeMsg clears the status-bar record it names. A newer
// record has a higher sequence and is left alone.
type logRecordFadeMsg struct {
	sequence int
}

// logRecordFadeDelay is how long a record stays in the status bar.
const logRecordFadeDelay = 5 * time.Second

// programSender is the part of *tea.Program the handler uses.
type programSender interface {
	Send(tea.Msg)
}

// TUILogHandler is a slog.Handler that delivers records into a
// running bubbletea program as status-bar messages. Records below the
// configured level are dropped, as are records that arrive before
// [TUILogHandler.SetProgram] is called.
//
// Handlers derived via WithAttrs/WithGroup share the program pointer
// with their root, so a single SetProgram reaches all of them.
type TUILogHandler struct {
	level   slog.Leveler
	program *atomic.Pointer[programSender]
	attrs   []slog.Attr
	prefix  string // Group path, "" or "a.b.".
}

// NewTUILogHandler creates a handler for records at or above level.
func NewTUILogHandler(level slog.Leveler) *TUILogHandler {
	return &TUILogHandler{
		level:   level,
		program: &atomic.Pointer[programSender]{},
	}
}

// SetProgram connects the handler to program. Safe to call from any
// goroutine.
func (handler *TUILogHandler) SetProgram(program *tea.Program) {
	handler.setSender(program)
}

func (handler *TUILogHandler) setSender(sender programSender) {
	handler.program.Store(&sender)
}

func (handler *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle formats the record as "message (key=value, ...)" and sends
// it to the program.
func (handler *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	sender := handler.program.Load()
	if sender == nil {
		return nil
	}

	var parts []string
	for _, attr := range handler.attrs {
		parts = appendAttr(parts, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = appendAttr(parts, handler.prefix, attr)
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	(*sender).Send(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

// appendAttr flattens attr into key=value strings, expanding groups
// into dotted keys.
func appendAttr(parts []string, prefix string, attr slog.Attr) []string {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix += attr.Key + "."
		}
		for _, member := range value.Group() {
			parts = appendAttr(parts, groupPrefix, member)
		}
		return parts
	}
	if attr.Equal(slog.Attr{}) {
		return parts
	}
	return append(parts, prefix+attr.Key+"="+value.String())
}

func (handler *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	derived.attrs = make([]slog.Attr, 0, len(handler.attrs)+len(attrs))
	derived.attrs = append(derived.attrs, handler.attrs...)
	for _, attr := range attrs {
		if handler.prefix != "" {
			attr.Key = handler.prefix + attr.Key
		}
		derived.attrs = append(derived.attrs, attr)
	}
	return &derived
}

func (handler *TUILogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := *handler
	derived.prefix = handler.prefix + name + "."
	return &derived
}
