package hud

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/five82/hudsync/internal/dispatch"
	"github.com/five82/hudsync/internal/prefs"
	"github.com/five82/hudsync/internal/state"
)

var (
	// ErrViewNotReady is returned by Publish before the view can take data.
	ErrViewNotReady = errors.New("view not ready")
	// ErrPaused is returned by Publish while the game is paused.
	ErrPaused = errors.New("game paused")
)

// Default delays for deferred rechecks.
const (
	DefaultLevelUpRecheck = 300 * time.Millisecond
	DefaultPauseRecheck   = time.Second
)

// Settings persists the view's settings and preset documents.
type Settings interface {
	LoadSettings() string
	SaveSettingsAsync(settings string) error
	ExportPreset(preset string) error
	ImportPreset() (string, bool)
}

// Options configure a Session.
type Options struct {
	Clock          clock.Clock
	Logger         *zap.Logger
	Prefs          Settings
	State          *state.Store
	Dispatch       dispatch.Options // Clock and Logger default to the session's
	LevelUpRecheck time.Duration
	PauseRecheck   time.Duration
}

// Session tracks the host flags that decide whether and how the HUD is fed,
// and owns the Dispatcher that feeds it.
type Session struct {
	clock      clock.Clock
	logger     *zap.Logger
	prefs      Settings
	state      *state.Store
	dispatcher *dispatch.Dispatcher

	levelUpRecheck time.Duration
	pauseRecheck   time.Duration

	mu        sync.Mutex
	viewReady bool
	loaded    bool
	visible   bool
	inCombat  bool
	paused    bool
	menus     []bool // open menus, innermost last; true when the menu hides the HUD
	sequence  uint64
}

// NewSession builds a Session and its Dispatcher. The dispatcher starts
// disabled; GameLoaded enables it.
func NewSession(opts Options) *Session {
	s := &Session{
		clock:          opts.Clock,
		logger:         opts.Logger,
		prefs:          opts.Prefs,
		state:          opts.State,
		levelUpRecheck: opts.LevelUpRecheck,
		pauseRecheck:   opts.PauseRecheck,
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.state == nil {
		s.state = &state.Store{}
	}
	if s.levelUpRecheck <= 0 {
		s.levelUpRecheck = DefaultLevelUpRecheck
	}
	if s.pauseRecheck <= 0 {
		s.pauseRecheck = DefaultPauseRecheck
	}

	dopts := opts.Dispatch
	if dopts.Clock == nil {
		dopts.Clock = s.clock
	}
	if dopts.Logger == nil {
		dopts.Logger = s.logger.Named("dispatch")
	}
	dopts.Enabled = false
	s.dispatcher = dispatch.New(s, dopts)
	return s
}

// Dispatcher returns the dispatcher driven by this session.
func (s *Session) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// State returns the snapshot store the session writes to.
func (s *Session) State() *state.Store {
	return s.state
}

// Urgent implements dispatch.Host. Combat shortens the throttle interval.
func (s *Session) Urgent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inCombat
}

// Publish implements dispatch.Host. It builds the payload and records it as
// delivered.
func (s *Session) Publish(force bool) error {
	s.mu.Lock()
	if !s.viewReady || !s.loaded {
		s.mu.Unlock()
		return ErrViewNotReady
	}
	if s.paused {
		s.mu.Unlock()
		s.dispatcher.ScheduleRecheckAfter(s.pauseRecheck)
		return ErrPaused
	}
	s.sequence++
	seq := s.sequence
	combat := s.inCombat
	s.mu.Unlock()

	now := s.clock.Now()
	payload, err := buildPayload(seq, force, combat, now)
	if err != nil {
		s.recordError(err)
		return fmt.Errorf("build payload: %w", err)
	}

	stats := s.dispatcher.Stats()
	s.state.Update(func(snap *state.Snapshot) {
		snap.Payload = payload
		snap.Sequence = seq
		snap.PublishedAt = now
		snap.LastForced = force
		// Stats are read before this publish is counted.
		snap.Publishes = stats.Publishes + 1
		snap.Forced = stats.Forced
		if force {
			snap.Forced++
		}
		snap.Throttled = stats.Throttled
		snap.Failures = stats.Failures
		snap.LastError = ""
	})
	return nil
}

func buildPayload(seq uint64, force, combat bool, at time.Time) (string, error) {
	payload := "{}"
	fields := []struct {
		path  string
		value any
	}{
		{"seq", seq},
		{"forced", force},
		{"combat", combat},
		{"timestamp", at.UTC().Format(time.RFC3339Nano)},
	}
	for _, f := range fields {
		var err error
		payload, err = sjson.Set(payload, f.path, f.value)
		if err != nil {
			return "", fmt.Errorf("set %s: %w", f.path, err)
		}
	}
	return payload, nil
}

// ViewReady records whether the view can take data. When it becomes ready
// the saved settings are pushed and a full sync is requested.
func (s *Session) ViewReady(ready bool) {
	s.mu.Lock()
	s.viewReady = ready
	if !ready {
		s.visible = false
	}
	s.mu.Unlock()
	s.syncFlags()

	if ready {
		s.logger.Info("view ready")
		s.pushSettings()
		s.dispatcher.RequestUpdate(true)
	}
}

// GameLoaded starts a session: the dispatcher is enabled, the view shown,
// settings pushed and one forced sync requested.
func (s *Session) GameLoaded() {
	s.mu.Lock()
	s.loaded = true
	s.menus = nil
	shown := s.showLocked()
	s.mu.Unlock()

	s.dispatcher.SetEnabled(true)
	s.syncFlags()

	if !shown {
		s.logger.Warn("view not ready on game load, skipping initial sync")
		return
	}
	s.pushSettings()
	s.dispatcher.RequestUpdate(true)
	s.logger.Info("game loaded, hud visible")
}

// MainMenuOpened ends the session. Pending work and any recheck are dropped.
func (s *Session) MainMenuOpened() {
	s.mu.Lock()
	if !s.viewReady {
		s.mu.Unlock()
		return
	}
	s.loaded = false
	s.visible = false
	s.menus = nil
	s.mu.Unlock()

	s.dispatcher.SetEnabled(false)
	s.syncFlags()
	s.logger.Info("main menu opened, session ended")
}

// CombatChanged records combat state and asks for a throttled update.
func (s *Session) CombatChanged(inCombat bool) {
	s.mu.Lock()
	s.inCombat = inCombat
	s.mu.Unlock()
	s.syncFlags()
	s.dispatcher.RequestUpdate(false)
}

// CombatTick asks for a throttled update.
func (s *Session) CombatTick() {
	s.dispatcher.RequestUpdate(false)
}

// EffectChanged asks for a throttled update.
func (s *Session) EffectChanged() {
	s.dispatcher.RequestUpdate(false)
}

// Equipped asks for a forced update.
func (s *Session) Equipped() {
	s.dispatcher.RequestUpdate(true)
}

// MenuOpened hides the view when the menu hides the HUD or the game is
// paused.
func (s *Session) MenuOpened(hides bool) {
	s.mu.Lock()
	if !s.viewReady {
		s.mu.Unlock()
		return
	}
	s.menus = append(s.menus, hides)
	if hides || s.paused {
		s.visible = false
	}
	s.mu.Unlock()
	s.syncFlags()
}

// MenuClosed closes the innermost open menu. Closing the level-up menu
// schedules a delayed recheck. When nothing hiding remains open and the game
// is running, the view is shown and a forced update requested.
func (s *Session) MenuClosed(levelUp bool) {
	s.mu.Lock()
	if !s.viewReady {
		s.mu.Unlock()
		return
	}
	if n := len(s.menus); n > 0 {
		s.menus = s.menus[:n-1]
	}
	loaded := s.loaded
	shown := false
	if loaded && !s.paused && !s.hidingMenuOpenLocked() {
		shown = s.showLocked()
	}
	s.mu.Unlock()
	s.syncFlags()

	if levelUp && loaded {
		s.dispatcher.ScheduleRecheckAfter(s.levelUpRecheck)
	}
	if shown {
		s.dispatcher.RequestUpdate(true)
	}
}

// SetPaused records whether the game is paused.
func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
	s.syncFlags()
}

// Heartbeat asks for a forced update while a session is running.
func (s *Session) Heartbeat() {
	s.mu.Lock()
	active := s.loaded && !s.paused
	s.mu.Unlock()
	if active {
		s.dispatcher.RequestUpdate(true)
	}
}

// SettingsChanged queues the view's settings for saving.
func (s *Session) SettingsChanged(settings string) error {
	if s.prefs == nil {
		return nil
	}
	err := s.prefs.SaveSettingsAsync(settings)
	s.recordStorage("queue", err)
	if err == nil {
		s.state.Update(func(snap *state.Snapshot) {
			snap.Settings = settings
			snap.Theme = prefs.Theme(settings)
		})
	}
	return err
}

// ExportPreset writes preset synchronously.
func (s *Session) ExportPreset(preset string) error {
	if s.prefs == nil {
		return nil
	}
	err := s.prefs.ExportPreset(preset)
	s.recordStorage("export", err)
	if err != nil {
		s.logger.Warn("preset export failed", zap.Error(err))
	}
	return err
}

// ImportPreset returns the saved preset, if any.
func (s *Session) ImportPreset() (string, bool) {
	if s.prefs == nil {
		return "", false
	}
	preset, ok := s.prefs.ImportPreset()
	if ok {
		s.recordStorage("import", nil)
	} else {
		s.recordStorage("import", errors.New("no preset saved"))
	}
	return preset, ok
}

func (s *Session) pushSettings() {
	if s.prefs == nil {
		return
	}
	settings := s.prefs.LoadSettings()
	s.state.Update(func(snap *state.Snapshot) {
		snap.Settings = settings
		snap.Theme = prefs.Theme(settings)
	})
}

// showLocked reports whether the view could be shown. Callers hold mu.
func (s *Session) showLocked() bool {
	if !s.viewReady {
		return false
	}
	s.visible = true
	return true
}

func (s *Session) hidingMenuOpenLocked() bool {
	for _, hides := range s.menus {
		if hides {
			return true
		}
	}
	return false
}

func (s *Session) syncFlags() {
	s.mu.Lock()
	viewReady, loaded, visible := s.viewReady, s.loaded, s.visible
	inCombat, paused, menuOpen := s.inCombat, s.paused, len(s.menus) > 0
	s.mu.Unlock()
	enabled := s.dispatcher.Enabled()

	s.state.Update(func(snap *state.Snapshot) {
		snap.ViewReady = viewReady
		snap.Loaded = loaded
		snap.Visible = visible
		snap.InCombat = inCombat
		snap.Paused = paused
		snap.MenuOpen = menuOpen
		snap.Enabled = enabled
	})
}

func (s *Session) recordError(err error) {
	s.state.Update(func(snap *state.Snapshot) {
		snap.LastError = err.Error()
	})
}

func (s *Session) recordStorage(op string, err error) {
	result := state.StorageResult{Op: op, OK: err == nil, At: s.clock.Now()}
	if err != nil {
		result.Err = err.Error()
	}
	s.state.Update(func(snap *state.Snapshot) {
		snap.LastStorage = result
	})
}
