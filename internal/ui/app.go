package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/hudsync/internal/logtail"
	"github.com/five82/hudsync/internal/prefs"
	"github.com/five82/hudsync/internal/state"
)

const (
	defaultRefresh = 250 * time.Millisecond
	logLines       = 400
)

// Session is the set of host events the UI can inject.
type Session interface {
	ViewReady(ready bool)
	GameLoaded()
	MainMenuOpened()
	CombatChanged(inCombat bool)
	CombatTick()
	Equipped()
	MenuOpened(hides bool)
	MenuClosed(levelUp bool)
	SetPaused(paused bool)
	SettingsChanged(settings string) error
	ExportPreset(preset string) error
	ImportPreset() (string, bool)
}

// Options configures the UI.
type Options struct {
	Context   context.Context // cancelling it stops the program
	Session   Session
	Store     *state.Store
	LogPath   string
	Refresh   time.Duration
	ThemeName string
	Logger    *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	session Session
	store   *state.Store
	logPath string
	refresh time.Duration
	logger  *zap.Logger

	theme    Theme
	keys     keyMap
	help     help.Model
	viewport viewport.Model

	width    int
	height   int
	ready    bool
	showLogs bool
	showHelp bool

	snapshot state.Snapshot
	logLines []string
	status   string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	return Model{
		session: opts.Session,
		store:   store,
		logPath: opts.LogPath,
		refresh: refresh,
		logger:  logger,
		theme:   GetTheme(opts.ThemeName),
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.refresh),
		fetchSnapshotCmd(m.store),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(m.paneWidth(), m.paneHeight())
		} else {
			m.viewport.Width = m.paneWidth()
			m.viewport.Height = m.paneHeight()
		}
		m.ready = true
		m.updateViewport()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{fetchSnapshotCmd(m.store), tickCmd(m.refresh)}
		if m.showLogs {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		if m.snapshot.Theme != "" && m.snapshot.Theme != m.theme.Name {
			m.theme = GetTheme(m.snapshot.Theme)
		}
		m.updateViewport()
		return m, nil

	case logLinesMsg:
		m.logLines = msg
		m.updateViewport()
		return m, nil

	case logErrorMsg:
		m.logger.Debug("log pane read failed", zap.Error(msg.err))
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey maps keys onto session events.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	snap := m.snapshot
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
		m.updateViewport()
		if m.showLogs {
			return m, readLogsCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		next := NextTheme(m.theme.Name)
		m.theme = GetTheme(next)
		settings, err := prefs.WithTheme(snap.Settings, next)
		if err != nil {
			m.status = fmt.Sprintf("theme not saved: %v", err)
			return m, fetchSnapshotCmd(m.store)
		}
		m.status = m.storageStatus("theme "+next, m.settingsChanged(settings))
		return m, fetchSnapshotCmd(m.store)
	}

	if m.session == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.GameLoaded):
		m.session.GameLoaded()
		m.status = "game loaded"
	case key.Matches(msg, m.keys.MainMenu):
		m.session.MainMenuOpened()
		m.status = "main menu"
	case key.Matches(msg, m.keys.ViewReady):
		m.session.ViewReady(!snap.ViewReady)
		m.status = fmt.Sprintf("view ready: %t", !snap.ViewReady)
	case key.Matches(msg, m.keys.Combat):
		m.session.CombatChanged(!snap.InCombat)
		m.status = fmt.Sprintf("combat: %t", !snap.InCombat)
	case key.Matches(msg, m.keys.CombatTick):
		m.session.CombatTick()
		m.status = "combat tick"
	case key.Matches(msg, m.keys.Equip):
		m.session.Equipped()
		m.status = "equipped"
	case key.Matches(msg, m.keys.Pause):
		m.session.SetPaused(!snap.Paused)
		m.status = fmt.Sprintf("paused: %t", !snap.Paused)
	case key.Matches(msg, m.keys.OpenHiding):
		m.session.MenuOpened(true)
		m.status = "hiding menu opened"
	case key.Matches(msg, m.keys.OpenOverlay):
		m.session.MenuOpened(false)
		m.status = "overlay menu opened"
	case key.Matches(msg, m.keys.CloseMenu):
		m.session.MenuClosed(false)
		m.status = "menu closed"
	case key.Matches(msg, m.keys.LevelUp):
		m.session.MenuClosed(true)
		m.status = "level-up menu closed"
	case key.Matches(msg, m.keys.SaveSettings):
		settings, err := prefs.WithTheme(snap.Settings, m.theme.Name)
		if err != nil {
			m.status = fmt.Sprintf("settings not saved: %v", err)
			break
		}
		m.status = m.storageStatus("settings queued", m.settingsChanged(settings))
	case key.Matches(msg, m.keys.Export):
		preset := snap.Settings
		if preset == "" {
			preset, _ = prefs.WithTheme("", m.theme.Name)
		}
		m.status = m.storageStatus("preset exported", m.session.ExportPreset(preset))
	case key.Matches(msg, m.keys.Import):
		preset, ok := m.session.ImportPreset()
		if !ok {
			m.status = "no preset saved"
			break
		}
		m.status = m.storageStatus("preset imported", m.settingsChanged(preset))
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, fetchSnapshotCmd(m.store)
}

func (m Model) settingsChanged(settings string) error {
	if m.session == nil {
		return nil
	}
	return m.session.SettingsChanged(settings)
}

func (m Model) storageStatus(done string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s failed: %v", done, err)
	}
	return done
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logLinesMsg []string

type logErrorMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logLines, 0)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logLinesMsg(lines)
	}
}

// Run starts the Bubble Tea program and blocks until it exits or
// opts.Context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
