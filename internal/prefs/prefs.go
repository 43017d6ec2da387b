// Package prefs persists the view's settings and preset documents.
// Both are opaque JSON produced by the view; only the theme field is
// interpreted on this side.
package prefs

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// Document names and the files that back them.
const (
	SettingsDocument = "settings"
	PresetDocument   = "preset"

	SettingsFile = "hudsync.json"
	PresetFile   = "hudsync_preset.json"
)

// DefaultTheme is used when settings are missing or name no theme.
const DefaultTheme = "Dracula"

const themeField = "theme"

// Documents returns the document table for durable.Options.
func Documents() map[string]string {
	return map[string]string{
		SettingsDocument: SettingsFile,
		PresetDocument:   PresetFile,
	}
}

// Storage is the subset of durable.Store the manager uses.
type Storage interface {
	Save(name string, data []byte) error
	SaveAsync(name string, data []byte) error
	Load(name string) ([]byte, bool)
}

// Manager reads and writes settings and presets.
type Manager struct {
	store  Storage
	logger *zap.Logger
}

// NewManager returns a Manager backed by store.
func NewManager(store Storage, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, logger: logger}
}

// LoadSettings returns the saved settings, or "" if none are usable.
func (m *Manager) LoadSettings() string {
	data, ok := m.store.Load(SettingsDocument)
	if !ok {
		return ""
	}
	return string(data)
}

// SaveSettings writes settings synchronously.
func (m *Manager) SaveSettings(settings string) error {
	return m.store.Save(SettingsDocument, []byte(settings))
}

// SaveSettingsAsync queues settings for the background writer.
func (m *Manager) SaveSettingsAsync(settings string) error {
	if err := m.store.SaveAsync(SettingsDocument, []byte(settings)); err != nil {
		m.logger.Warn("queue settings save", zap.Error(err))
		return err
	}
	return nil
}

// ExportPreset writes the preset synchronously so the caller can report the
// outcome right away.
func (m *Manager) ExportPreset(preset string) error {
	return m.store.Save(PresetDocument, []byte(preset))
}

// ImportPreset returns the saved preset and whether one was found.
func (m *Manager) ImportPreset() (string, bool) {
	data, ok := m.store.Load(PresetDocument)
	if !ok {
		return "", false
	}
	return string(data), true
}

// Theme returns the theme named in settings, or DefaultTheme.
func Theme(settings string) string {
	return ThemeOr(settings, DefaultTheme)
}

// ThemeOr returns the theme named in settings, or fallback.
func ThemeOr(settings, fallback string) string {
	if !gjson.Valid(settings) {
		return fallback
	}
	name := strings.TrimSpace(gjson.Get(settings, themeField).String())
	if name == "" {
		return fallback
	}
	return name
}

// WithTheme returns settings with the theme field set to name. Empty or
// malformed settings are replaced by a fresh object.
func WithTheme(settings, name string) (string, error) {
	if strings.TrimSpace(settings) == "" || !gjson.Valid(settings) {
		settings = "{}"
	}
	return sjson.Set(settings, themeField, name)
}
