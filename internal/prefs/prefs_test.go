package prefs

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/five82/hudsync/internal/durable"
)

func newTestManager(t *testing.T) (*Manager, *durable.Store) {
	t.Helper()
	store, err := durable.New(durable.Options{
		Dir:       filepath.Join(t.TempDir(), "data"),
		Documents: Documents(),
	})
	if err != nil {
		t.Fatalf("durable.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store, nil), store
}

func TestManager_LoadSettingsMissingIsEmpty(t *testing.T) {
	m, _ := newTestManager(t)
	if got := m.LoadSettings(); got != "" {
		t.Fatalf("LoadSettings = %q, want empty", got)
	}
}

func TestManager_SaveSettingsRoundTrip(t *testing.T) {
	m, store := newTestManager(t)

	settings := `{"theme":"Slate","opacity":0.8}`
	if err := m.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if got := m.LoadSettings(); got != settings {
		t.Fatalf("LoadSettings = %q, want %q", got, settings)
	}

	path, err := store.Path(SettingsDocument)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if filepath.Base(path) != SettingsFile {
		t.Fatalf("settings file = %q, want %q", filepath.Base(path), SettingsFile)
	}
}

func TestManager_SaveSettingsAsyncLastWins(t *testing.T) {
	m, store := newTestManager(t)

	for _, s := range []string{`{"v":1}`, `{"v":2}`, `{"v":3}`} {
		if err := m.SaveSettingsAsync(s); err != nil {
			t.Fatalf("SaveSettingsAsync(%s): %v", s, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := m.LoadSettings(); got != `{"v":3}` {
		t.Fatalf("LoadSettings = %q, want last write", got)
	}
}

func TestManager_PresetExportImport(t *testing.T) {
	m, _ := newTestManager(t)

	if _, ok := m.ImportPreset(); ok {
		t.Fatal("ImportPreset reported a preset before any export")
	}

	preset := `{"layout":"compact"}`
	if err := m.ExportPreset(preset); err != nil {
		t.Fatalf("ExportPreset: %v", err)
	}
	got, ok := m.ImportPreset()
	if !ok || got != preset {
		t.Fatalf("ImportPreset = %q, %v; want %q, true", got, ok, preset)
	}

	// Settings and preset are independent documents.
	if s := m.LoadSettings(); s != "" {
		t.Fatalf("LoadSettings = %q after preset export, want empty", s)
	}
}

func TestManager_ExportPresetTooLarge(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.ExportPreset(strings.Repeat("a", int(durable.DefaultMaxBytes)+1))
	if !errors.Is(err, durable.ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestTheme(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		want     string
	}{
		{"empty", "", DefaultTheme},
		{"malformed", `{"theme":`, DefaultTheme},
		{"missing field", `{"opacity":1}`, DefaultTheme},
		{"blank field", `{"theme":"  "}`, DefaultTheme},
		{"set", `{"theme":"Slate"}`, "Slate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Theme(tt.settings); got != tt.want {
				t.Fatalf("Theme = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThemeOr(t *testing.T) {
	if got := ThemeOr("", "Nightfox"); got != "Nightfox" {
		t.Fatalf("ThemeOr(empty) = %q, want fallback", got)
	}
	if got := ThemeOr(`{"theme":"Slate"}`, "Nightfox"); got != "Slate" {
		t.Fatalf("ThemeOr = %q, want saved theme", got)
	}
}

func TestWithTheme(t *testing.T) {
	out, err := WithTheme(`{"opacity":0.5}`, "Slate")
	if err != nil {
		t.Fatalf("WithTheme: %v", err)
	}
	if Theme(out) != "Slate" {
		t.Fatalf("theme = %q, want Slate", Theme(out))
	}
	if gjson.Get(out, "opacity").Float() != 0.5 {
		t.Fatalf("other fields lost: %s", out)
	}

	out, err = WithTheme("not json", "Dracula")
	if err != nil {
		t.Fatalf("WithTheme on malformed input: %v", err)
	}
	if out != `{"theme":"Dracula"}` {
		t.Fatalf("WithTheme = %s, want fresh object", out)
	}
}
