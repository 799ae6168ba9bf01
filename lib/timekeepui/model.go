// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timekeepui

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/timekeep/lib/anchor"
	"github.com/bureau-foundation/timekeep/lib/clock"
	"github.com/bureau-foundation/timekeep/lib/countdown"
	"github.com/bureau-foundation/timekeep/lib/stopwatch"
	"github.com/bureau-foundation/timekeep/lib/timeauthority"
	"github.com/bureau-foundation/timekeep/lib/timefmt"
	"github.com/bureau-foundation/timekeep/lib/tui"
)

// frameInterval is the redraw period. Engines publish at 10ms; 30ms
// keeps the centiseconds visibly moving without burning a core.
const frameInterval = 30 * time.Millisecond

// Rows taken by the header, bottom separator, and help bar.
const chromeHeight = 3

// Stopwatch is the stopwatch engine surface the model drives.
type Stopwatch interface {
	Start()
	Stop()
	Reset()
	Lap()
	Snapshot() stopwatch.Snapshot
	Close()
}

// Countdown is the countdown engine surface the model drives.
type Countdown interface {
	SetTime(minutes, seconds int)
	Start()
	Pause()
	Reset()
	Snapshot() countdown.Snapshot
	Close()
}

// RealTime is the clock sync engine surface the model drives.
type RealTime interface {
	ToggleFormat()
	RequestSync() bool
	Parts() timefmt.Parts
	Syncing() bool
	LastSync() time.Time
	LastSyncError() error
	Offset() time.Duration
	Close()
}

// ViewRepository persists the active view.
type ViewRepository interface {
	Load() (anchor.View, error)
	Save(anchor.View) error
}

// Config wires the model to its engines.
type Config struct {
	Stopwatch Stopwatch
	Countdown Countdown
	RealTime  RealTime

	// Views persists the active view. Required.
	Views ViewRepository

	// InitialView overrides the persisted view when set.
	InitialView anchor.View

	// Clock supplies "now" for sync age and lap highlighting.
	// Defaults to clock.Real().
	Clock clock.Clock

	// Renderer styles all output. Defaults to a renderer on stderr
	// with the environment's color profile.
	Renderer *lipgloss.Renderer

	Logger *slog.Logger
}

// frameMsg drives the redraw loop.
type frameMsg struct{}

// Model is the top-level bubbletea model for the timekeep TUI.
type Model struct {
	stopwatchEngine Stopwatch
	countdownEngine Countdown
	realTime        RealTime
	views           ViewRepository
	clock           clock.Clock
	renderer        *lipgloss.Renderer
	logger          *slog.Logger
	theme           tui.Theme
	keys            KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	view anchor.View

	// Engine observations, refreshed every frame and after every key.
	now        time.Time
	stopwatch  stopwatch.Snapshot
	countdown  countdown.Snapshot
	clockParts timefmt.Parts
	syncing    bool
	lastSync   time.Time
	syncErr    error
	offset     time.Duration

	// Lap list scroll position, in rows from the newest lap.
	lapOffset int
	lapPulse  tui.Pulse

	// Non-nil while the countdown set form is open.
	form *countdownForm

	// Status bar message; replaces the help text until it fades.
	status         string
	statusLevel    slog.Level
	statusSequence int
}

// NewModel creates a Model for cfg. The starting view is
// cfg.InitialView, else the persisted view, else the stopwatch.
func NewModel(cfg Config) Model {
	if cfg.Stopwatch == nil || cfg.Countdown == nil || cfg.RealTime == nil || cfg.Views == nil {
		panic("timekeepui: Config requires all engines and a view repository")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = tui.NewRenderer(os.Stderr, tui.DetectProfile(os.Stderr))
	}

	view := cfg.InitialView
	if view == "" {
		loaded, err := cfg.Views.Load()
		if err != nil {
			logger.Warn("loading active view failed", "error", err)
		}
		view = loaded
	}
	if view == "" {
		view = anchor.ViewStopwatch
	}

	model := Model{
		stopwatchEngine: cfg.Stopwatch,
		countdownEngine: cfg.Countdown,
		realTime:        cfg.RealTime,
		views:           cfg.Views,
		clock:           clk,
		renderer:        renderer,
		logger:          logger,
		theme:           tui.DefaultTheme,
		keys:            DefaultKeyMap,
		view:            view,
	}
	if cfg.InitialView != "" {
		model.persistView()
	}
	model.refresh()
	return model
}

// ActiveView returns the view being shown.
func (model Model) ActiveView() anchor.View {
	return model.view
}

// Init implements tea.Model by starting the frame loop.
func (model Model) Init() tea.Cmd {
	return scheduleFrame()
}

func scheduleFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if model.form != nil {
			return model.handleFormKeys(message)
		}
		return model.handleKeys(message)

	case frameMsg:
		model.refresh()
		return model, scheduleFrame()

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.clampLapOffset()

	case logRecordMsg:
		return model, model.setStatus(message.Summary, message.Level)

	case logRecordFadeMsg:
		if message.sequence == model.statusSequence {
			model.status = ""
		}
	}
	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(message, model.keys.Quit):
		model.closeEngines()
		return model, tea.Quit

	case key.Matches(message, model.keys.ShowStopwatch):
		model.switchView(anchor.ViewStopwatch)
	case key.Matches(message, model.keys.ShowCountdown):
		model.switchView(anchor.ViewCountdown)
	case key.Matches(message, model.keys.ShowClock):
		model.switchView(anchor.ViewClock)
	case key.Matches(message, model.keys.NextView):
		model.switchView(model.adjacentView(1))
	case key.Matches(message, model.keys.PreviousView):
		model.switchView(model.adjacentView(-1))

	default:
		switch model.view {
		case anchor.ViewStopwatch:
			model.handleStopwatchKeys(message)
		case anchor.ViewCountdown:
			cmd = model.handleCountdownKeys(message)
		case anchor.ViewClock:
			cmd = model.handleClockKeys(message)
		}
	}

	model.refresh()
	return model, cmd
}

func (model *Model) handleStopwatchKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.StartStop):
		if model.stopwatchEngine.Snapshot().Running() {
			model.stopwatchEngine.Stop()
		} else {
			model.stopwatchEngine.Start()
		}

	case key.Matches(message, model.keys.Lap):
		before := len(model.stopwatchEngine.Snapshot().Laps)
		model.stopwatchEngine.Lap()
		if after := len(model.stopwatchEngine.Snapshot().Laps); after > before {
			model.lapPulse.Ignite(after, model.clock.Now())
			model.lapOffset = 0
		}

	case key.Matches(message, model.keys.Reset):
		model.stopwatchEngine.Reset()
		model.lapOffset = 0

	case key.Matches(message, model.keys.ScrollUp):
		model.lapOffset--
		model.clampLapOffset()

	case key.Matches(message, model.keys.ScrollDown):
		model.lapOffset++
		model.clampLapOffset()
	}
}

func (model *Model) handleCountdownKeys(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, model.keys.StartStop):
		if model.countdownEngine.Snapshot().Running() {
			model.countdownEngine.Pause()
		} else {
			model.countdownEngine.Start()
		}

	case key.Matches(message, model.keys.Reset):
		model.countdownEngine.Reset()

	case key.Matches(message, model.keys.SetTime):
		form := newCountdownForm(model.countdownEngine.Snapshot().Target.Milliseconds())
		model.form = &form
		return textinput.Blink
	}
	return nil
}

func (model *Model) handleClockKeys(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, model.keys.ToggleFormat):
		model.realTime.ToggleFormat()

	case key.Matches(message, model.keys.Resync):
		if model.realTime.RequestSync() {
			return model.setStatus("resync requested", slog.LevelInfo)
		}
		return model.setStatus("resync throttled, try again in a few seconds", slog.LevelWarn)
	}
	return nil
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		model.closeEngines()
		return model, tea.Quit

	case key.Matches(message, model.keys.FormCancel):
		model.form = nil

	case key.Matches(message, model.keys.FormSubmit):
		minutes, seconds, err := model.form.values()
		if err != nil {
			model.form.err = err
			return model, nil
		}
		model.countdownEngine.SetTime(minutes, seconds)
		model.form = nil
		model.refresh()

	case key.Matches(message, model.keys.FormNext):
		model.form.toggleFocus()

	default:
		return model, model.form.update(message)
	}
	return model, nil
}

// switchView activates view and persists the choice.
func (model *Model) switchView(view anchor.View) {
	if view == model.view {
		return
	}
	model.view = view
	model.persistView()
}

func (model *Model) persistView() {
	if err := model.views.Save(model.view); err != nil {
		model.logger.Warn("saving active view failed", "view", string(model.view), "error", err)
	}
}

// adjacentView returns the view step positions away from the current
// one, wrapping around.
func (model Model) adjacentView(step int) anchor.View {
	count := len(anchor.Views)
	for index, view := range anchor.Views {
		if view == model.view {
			return anchor.Views[((index+step)%count+count)%count]
		}
	}
	return anchor.ViewStopwatch
}

// refresh re-reads every engine.
func (model *Model) refresh() {
	model.now = model.clock.Now()
	model.stopwatch = model.stopwatchEngine.Snapshot()
	model.countdown = model.countdownEngine.Snapshot()
	model.clockParts = model.realTime.Parts()
	model.syncing = model.realTime.Syncing()
	model.lastSync = model.realTime.LastSync()
	model.syncErr = model.realTime.LastSyncError()
	model.offset = model.realTime.Offset()
	model.clampLapOffset()
}

// setStatus shows summary in the status bar until it fades.
func (model *Model) setStatus(summary string, level slog.Level) tea.Cmd {
	model.statusSequence++
	model.status = summary
	model.statusLevel = level
	sequence := model.statusSequence
	return tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
		return logRecordFadeMsg{sequence: sequence}
	})
}

func (model Model) closeEngines() {
	model.stopwatchEngine.Close()
	model.countdownEngine.Close()
	model.realTime.Close()
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	bodyHeight := max(model.height-chromeHeight, 1)
	var body []string
	switch model.view {
	case anchor.ViewStopwatch:
		body = model.renderStopwatch(bodyHeight)
	case anchor.ViewCountdown:
		body = model.renderCountdown()
	case anchor.ViewClock:
		body = model.renderClock()
	}
	content := model.renderer.PlaceVertical(bodyHeight, lipgloss.Center,
		strings.Join(tui.CenterLines(body, model.width), "\n"))

	separator := model.renderer.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", max(model.width, 1)))

	output := strings.Join([]string{
		model.renderHeader(),
		content,
		separator,
		model.renderHelp(),
	}, "\n")

	if model.form != nil {
		modal := tui.Modal{
			Title:  "Set countdown",
			Body:   model.form.body(),
			Footer: "Enter set  Tab switch field  Esc cancel",
		}
		lines, anchorX, anchorY := modal.Render(model.renderer, model.theme, model.width, model.height)
		output = tui.SpliceOverlay(output, lines, anchorX, anchorY)
	}
	return output
}

// renderReadout renders text in large digits colored for readout,
// falling back to a single bold line when the terminal is too narrow.
func (model Model) renderReadout(text string, readout tui.Readout) []string {
	style := model.renderer.NewStyle().
		Bold(true).
		Foreground(model.theme.ReadoutColor(readout))
	if tui.BigWidth(text) > model.width {
		return []string{style.Render(text)}
	}
	rows := tui.BigText(text)
	for index, row := range rows {
		rows[index] = style.Render(row)
	}
	return rows
}

func (model Model) label(text string) string {
	return model.renderer.NewStyle().Foreground(model.theme.FaintText).Render(text)
}

func (model Model) renderStopwatch(bodyHeight int) []string {
	snapshot := model.stopwatch
	readout := tui.ReadoutIdle
	if snapshot.Running() {
		readout = tui.ReadoutRunning
	}

	lines := []string{model.label(strings.ToUpper(snapshot.State.String())), ""}
	lines = append(lines, model.renderReadout(snapshot.Formatted(), readout)...)
	lines = append(lines, "")

	if len(snapshot.Laps) == 0 {
		return append(lines, model.label("no laps"))
	}

	visible := model.visibleLapRows(bodyHeight)
	rows := model.lapRows(snapshot, visible)
	if scrollbar := tui.RenderScrollbar(model.renderer, model.theme,
		len(rows), len(snapshot.Laps), visible, model.lapOffset); scrollbar != "" {
		block := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(rows, "\n"), " ", scrollbar)
		rows = strings.Split(block, "\n")
	}
	return append(lines, rows...)
}

// lapRows renders the visible window of laps, newest first, numbered
// in recording order.
func (model Model) lapRows(snapshot stopwatch.Snapshot, visible int) []string {
	formatted := snapshot.FormattedLaps()
	normal := model.renderer.NewStyle().Foreground(model.theme.NormalText)
	pulsed := normal.Background(model.theme.Pulse)

	var rows []string
	for row := model.lapOffset; row < len(formatted) && len(rows) < visible; row++ {
		number := len(formatted) - row
		text := fmt.Sprintf("#%-3d %s", number, formatted[number-1])
		if model.lapPulse.Lit(number, model.now) {
			rows = append(rows, pulsed.Render(text))
		} else {
			rows = append(rows, normal.Render(text))
		}
	}
	return rows
}

// visibleLapRows is the number of lap rows that fit under the readout.
func (model Model) visibleLapRows(bodyHeight int) int {
	used := 2 + tui.DigitHeight + 1
	return max(bodyHeight-used, 1)
}

func (model *Model) clampLapOffset() {
	visible := model.visibleLapRows(max(model.height-chromeHeight, 1))
	limit := max(len(model.stopwatch.Laps)-visible, 0)
	model.lapOffset = min(max(model.lapOffset, 0), limit)
}

func (model Model) renderCountdown() []string {
	snapshot := model.countdown
	readout := tui.ReadoutIdle
	switch snapshot.State {
	case countdown.Running:
		readout = tui.ReadoutRunning
	case countdown.Paused:
		readout = tui.ReadoutPaused
	case countdown.Expired:
		readout = tui.ReadoutExpired
	}

	lines := []string{model.label(strings.ToUpper(snapshot.State.String())), ""}
	lines = append(lines, model.renderReadout(snapshot.Formatted(), readout)...)
	lines = append(lines, "")

	switch {
	case snapshot.State == countdown.Unset:
		lines = append(lines, model.label("press s to set a time"))
	case snapshot.State == countdown.Expired:
		lines = append(lines, model.renderer.NewStyle().
			Bold(true).
			Foreground(model.theme.Expired).
			Render("time's up"))
	default:
		lines = append(lines, model.label("of "+timefmt.Elapsed(snapshot.Target.Milliseconds())))
	}
	return lines
}

func (model Model) renderClock() []string {
	parts := model.clockParts
	readout := tui.ReadoutRunning
	if model.syncing {
		readout = tui.ReadoutPaused
	}

	lines := []string{model.label("LOCAL TIME"), ""}
	lines = append(lines, model.renderReadout(parts.Hours+":"+parts.Minutes+":"+parts.Seconds, readout)...)
	if parts.Meridiem != "" {
		lines = append(lines, "", model.renderer.NewStyle().
			Bold(true).
			Foreground(model.theme.NormalText).
			Render(string(parts.Meridiem)))
	}
	return append(lines, "", model.label(model.syncStatus()))
}

// syncStatus describes the clock's synchronization state.
func (model Model) syncStatus() string {
	switch {
	case model.syncing:
		return "syncing…"
	case model.lastSync.IsZero():
		return "not synced, showing device time"
	case errors.Is(model.syncErr, timeauthority.ErrDisabled):
		return "sync disabled, showing device time"
	case model.syncErr != nil:
		return fmt.Sprintf("sync failed %s, showing device time",
			humanize.RelTime(model.lastSync, model.now, "ago", "from now"))
	default:
		return fmt.Sprintf("synced %s (offset %+.3fs)",
			humanize.RelTime(model.lastSync, model.now, "ago", "from now"),
			model.offset.Seconds())
	}
}

// renderHeader renders the view tabs, with compact readouts on the
// right for engines running outside the active view.
func (model Model) renderHeader() string {
	separatorStyle := model.renderer.NewStyle().Foreground(model.theme.BorderColor)
	activeStyle := model.renderer.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	inactiveStyle := model.renderer.NewStyle().Foreground(model.theme.FaintText)

	rule := func(count int) string {
		return separatorStyle.Render(strings.Repeat("─", max(count, 1)))
	}

	left := rule(3)
	for index, view := range anchor.Views {
		label := fmt.Sprintf("%d %s", index+1, view)
		if view == model.view {
			left += " " + activeStyle.Render(label) + " "
		} else {
			left += " " + inactiveStyle.Render(label) + " "
		}
		left += rule(3)
	}

	var background []string
	if model.view != anchor.ViewStopwatch && model.stopwatch.Running() {
		background = append(background, "stopwatch "+model.stopwatch.Formatted())
	}
	if model.view != anchor.ViewCountdown && model.countdown.Running() {
		background = append(background, "countdown "+model.countdown.Formatted())
	}
	right := ""
	if len(background) > 0 {
		right = " " + model.renderer.NewStyle().
			Foreground(model.theme.Running).
			Render(strings.Join(background, "  ")) + " " + rule(1)
	}

	fill := model.width - lipgloss.Width(left) - lipgloss.Width(right)
	return left + rule(fill) + right
}

// renderHelp renders key hints for the active view, or the status
// message while one is showing.
func (model Model) renderHelp() string {
	if model.status != "" {
		color := model.theme.NormalText
		switch {
		case model.statusLevel >= slog.LevelError:
			color = model.theme.Error
		case model.statusLevel >= slog.LevelWarn:
			color = model.theme.Warning
		}
		return model.renderer.NewStyle().Bold(true).Foreground(color).Render(" " + model.status)
	}

	bindings := []key.Binding{model.keys.Quit, model.keys.NextView}
	switch model.view {
	case anchor.ViewStopwatch:
		bindings = append(bindings, model.keys.StartStop, model.keys.Lap, model.keys.Reset)
		if len(model.stopwatch.Laps) > model.visibleLapRows(max(model.height-chromeHeight, 1)) {
			bindings = append(bindings, model.keys.ScrollDown)
		}
	case anchor.ViewCountdown:
		bindings = append(bindings, model.keys.StartStop, model.keys.SetTime, model.keys.Reset)
	case anchor.ViewClock:
		bindings = append(bindings, model.keys.ToggleFormat, model.keys.Resync)
	}

	hints := make([]string, len(bindings))
	for index, binding := range bindings {
		help := binding.Help()
		hints[index] = help.Key + " " + help.Desc
	}
	return model.renderer.NewStyle().
		Foreground(model.theme.HelpText).
		Render(" " + strings.Join(hints, "  "))
}
