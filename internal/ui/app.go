package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/i18n"
	"github.com/five82/sagtrack/internal/logtail"
	"github.com/five82/sagtrack/internal/prefs"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewHome View = iota
	ViewEvents
	ViewSettings
	ViewLogs
)

var viewOrder = []View{ViewHome, ViewEvents, ViewSettings, ViewLogs}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Events    *state.EventLog
	Config    *state.ConfigStore
	Logger    *zap.Logger
	LogFile   string
	TravelMM  float64
	PollTick  time.Duration
	ThemeName string
	Lang      string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	events    *state.EventLog
	config    *state.ConfigStore
	logger    *zap.Logger
	logFile   string
	travelMM  float64
	prefsPath string
	pollTick  time.Duration

	// UI state
	keys        keyMap
	theme       Theme
	tr          *i18n.Translator
	currentView View
	width       int
	height      int
	ready       bool

	// Telemetry
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Events view
	selectedEvent  int
	eventsViewport viewport.Model

	// Settings view
	settingsRow int
	unitsDraft  sagapi.Configuration
	unitsDirty  bool

	// Log view
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logErr      error
	logFollow   bool

	// Overlays
	modal    Modal
	showHelp bool

	// Transient notice in the command bar
	flash    string
	flashErr bool
	flashAt  time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lang := opts.Lang
	if lang == "" {
		lang = prefs.DefaultLang
	}

	travel := opts.TravelMM
	if travel <= 0 {
		travel = state.DefaultTravelMM
	}

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		events:      opts.Events,
		config:      opts.Config,
		logger:      logger,
		logFile:     opts.LogFile,
		travelMM:    travel,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		tr:          i18n.MustNew(lang),
		currentView: ViewHome,
		logFollow:   true,
	}
	if m.config != nil {
		m.unitsDraft = m.config.Current()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.events != nil {
		cmds = append(cmds, loadEventsCmd(m.ctx, m.events))
	}
	if m.config != nil {
		cmds = append(cmds, loadConfigCmd(m.ctx, m.config))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateEventsViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		return m, nil

	case eventsLoadedMsg:
		if msg.err != nil {
			m.setFlash(m.tr.T("events.error"), true)
		}
		m.updateEventsViewport()
		return m, nil

	case configLoadedMsg:
		if msg.err != nil {
			m.setFlash(m.tr.T("settings.load_failed"), true)
		}
		if !m.unitsDirty && m.config != nil {
			m.unitsDraft = m.config.Current()
		}
		m.updateEventsViewport()
		return m, nil

	case writeDoneMsg:
		return m.handleWriteDone(msg)

	case logsMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil

	case eventSubmitMsg:
		if msg.mode == formInitial {
			return m, saveInitialCmd(m.ctx, m.config, msg.springs, msg.notes)
		}
		return m, appendEventCmd(m.ctx, m.events, msg.springs, msg.notes)

	case markerSubmitMsg:
		return m, saveMarkerCmd(m.ctx, m.config, msg.corner, msg.pos)

	case commentSubmitMsg:
		return m, postCommentCmd(m.ctx, m.events, msg.ts, msg.text)

	case confirmedMsg:
		switch msg.action {
		case confirmResetSag:
			return m, resetSagCmd(m.ctx, m.events)
		case confirmResetUnits:
			m.unitsDirty = false
			return m, resetUnitsCmd(m.ctx, m.config, m.events)
		}
		return m, nil
	}

	// Cursor blink and similar messages belong to the open modal.
	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return m.tr.T("common.loading")
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.tr, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateEventsViewport()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLang):
		m.tr = i18n.MustNew(m.tr.Next())
		m.savePrefs()
		m.updateEventsViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.cycleView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.cycleView(-1))

	case key.Matches(msg, m.keys.ViewHome):
		return m.switchView(ViewHome)

	case key.Matches(msg, m.keys.ViewEvents):
		return m.switchView(ViewEvents)

	case key.Matches(msg, m.keys.ViewSettings):
		return m.switchView(ViewSettings)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Escape):
		return m.switchView(ViewHome)

	case key.Matches(msg, m.keys.Reload):
		return m, tea.Batch(loadEventsCmd(m.ctx, m.events), loadConfigCmd(m.ctx, m.config))
	}

	switch m.currentView {
	case ViewHome:
		return m.handleHomeKey(msg)
	case ViewEvents:
		return m.handleEventsKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) cycleView(step int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewHome
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	if v == ViewLogs {
		return m, readLogsCmd(m.logFile)
	}
	return m, nil
}

// handleHomeKey processes the actions offered on the home view.
func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.AddEvent):
		m.openEventForm(formEvent)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.SetInitial):
		m.openInitialForm()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Markers):
		m.modal = newMarkerEditor(m.currentConfig(), m.liveView())
	case key.Matches(msg, m.keys.ResetSag):
		m.modal = newConfirmDialog(confirmResetSag)
	}
	return m, nil
}

func (m *Model) openEventForm(mode formMode) {
	springs, _ := m.currentSettings()
	m.modal = newEventForm(mode, springs, m.currentConfig())
}

// openInitialForm opens the form in initial mode. Once events exist the
// initial snapshot no longer drives anything, so the action is refused.
func (m *Model) openInitialForm() {
	if m.events != nil && len(m.events.Events()) > 0 {
		m.setFlash(m.tr.T("initial.unavailable"), true)
		return
	}
	m.openEventForm(formInitial)
}

// handleTick processes the polling tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.logFollow {
		cmds = append(cmds, readLogsCmd(m.logFile))
	}
	if m.flash != "" && now.Sub(m.flashAt) > FlashDuration {
		m.flash = ""
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) handleWriteDone(msg writeDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, state.ErrReloadFailed):
		m.logger.Warn("reload after write failed", zap.String("action", msg.notice), zap.Error(msg.err))
		m.setFlash(m.tr.Tf("write.reload_failed", m.tr.T(msg.notice), describeError(msg.err)), true)
	case msg.err != nil:
		m.logger.Warn("write failed", zap.String("action", msg.notice), zap.Error(msg.err))
		m.setFlash(m.tr.Tf("write.failed", describeError(msg.err)), true)
	default:
		m.setFlash(m.tr.T(msg.notice), false)
	}
	if !m.unitsDirty && m.config != nil {
		m.unitsDraft = m.config.Current()
	}
	m.updateEventsViewport()
	return m, nil
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashAt = time.Now()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Lang: m.tr.Lang()}); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

// currentConfig returns the cached configuration, or an empty one.
func (m Model) currentConfig() sagapi.Configuration {
	if m.config == nil {
		return sagapi.Configuration{}
	}
	return m.config.Current()
}

// currentSettings resolves the settings shown as "current": the newest
// event, else the initial snapshot.
func (m Model) currentSettings() (sagapi.Springs, state.Source) {
	if m.events == nil {
		return nil, state.SourceNone
	}
	return m.events.CurrentSettings(m.currentConfig().Initial)
}

func (m Model) liveView() state.LiveView {
	return state.ProjectLive(m.snapshot.Live, m.travelMM)
}

// describeError shortens transport errors for the command bar.
func describeError(err error) string {
	var statusErr *sagapi.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused"
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return "timeout"
	}
	return truncate(msg, 60)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHome:
		return m.renderHome()
	case ViewEvents:
		return m.renderEvents()
	case ViewSettings:
		return m.renderSettings()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
