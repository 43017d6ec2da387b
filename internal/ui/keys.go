package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings. Most keys inject a host event into
// the session.
type keyMap struct {
	// Session lifecycle
	GameLoaded key.Binding
	MainMenu   key.Binding
	ViewReady  key.Binding

	// Gameplay events
	Combat     key.Binding
	CombatTick key.Binding
	Equip      key.Binding
	Pause      key.Binding

	// Menus
	OpenHiding  key.Binding
	OpenOverlay key.Binding
	CloseMenu   key.Binding
	LevelUp     key.Binding

	// Storage
	SaveSettings key.Binding
	Export       key.Binding
	Import       key.Binding
	CycleTheme   key.Binding

	// Global
	Logs key.Binding
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		GameLoaded: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "Game loaded"),
		),
		MainMenu: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "Main menu"),
		),
		ViewReady: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Toggle view ready"),
		),

		Combat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Toggle combat"),
		),
		CombatTick: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Combat tick"),
		),
		Equip: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Equip item"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Toggle pause"),
		),

		OpenHiding: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open hiding menu"),
		),
		OpenOverlay: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Open overlay menu"),
		),
		CloseMenu: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Close menu"),
		),
		LevelUp: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Close level-up menu"),
		),

		SaveSettings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save settings"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "Export preset"),
		),
		Import: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "Import preset"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle log pane"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.GameLoaded, k.Combat, k.Equip, k.Logs, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.GameLoaded, k.MainMenu, k.ViewReady},
		{k.Combat, k.CombatTick, k.Equip, k.Pause},
		{k.OpenHiding, k.OpenOverlay, k.CloseMenu, k.LevelUp},
		{k.SaveSettings, k.Export, k.Import, k.CycleTheme},
		{k.Logs, k.Help, k.Quit},
	}
}
