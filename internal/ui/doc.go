// Package ui provides the terminal front end of the hudsync simulator.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It plays the part of the game: each key
// injects one host event into the HUD session (game loaded, combat, equip,
// menus, pause), and the screen shows what the session has published in
// response. The dispatcher runs on its own driver goroutine; the UI never
// publishes directly.
//
// # Package Structure
//
//   - app.go: Model, message loop, key handling, Run
//   - keys.go: key bindings and help groups (bubbles/key)
//   - render.go: header, flag row, counters, payload and log pane
//   - help.go: help overlay
//   - theme.go: color themes and derived lipgloss styles
//
// # Screen Layout
//
//	hudsync                                   payload · Dracula
//	● view  ● loaded  ● visible  ● dispatch  ○ combat  ○ paused  ○ menu
//	seq 12 · publishes 14 · forced 6 · throttled 31 · failures 2 · last ...
//	equipped │ queue ok 12:00:01
//	╭──────────────────────────────────────────────────────────╮
//	│ payload / log pane (bubbles viewport)                    │
//	╰──────────────────────────────────────────────────────────╯
//	g Game loaded • c Toggle combat • e Equip item • ...
//
// # Data Flow
//
// A tea.Tick fires every refresh interval (250ms by default). Each tick
// copies a state.Snapshot from the store; while the log pane is open it
// also reads the tail of the log file through logtail. Rendering only ever
// works on the copies held in the Model.
//
// # Themes
//
// T cycles Dracula, Nightfox and Slate. The choice is written into the
// settings document through the session, so it survives restarts and
// follows a preset import.
//
// # Keyboard Shortcuts
//
//	g  game loaded          M  main menu           r  toggle view ready
//	c  toggle combat        t  combat tick         e  equip
//	p  toggle pause         o  open hiding menu    O  open overlay menu
//	x  close menu           L  close level-up menu
//	s  save settings        E  export preset       I  import preset
//	T  cycle theme          l  toggle log pane     ?  help
//	q  quit (also ctrl+c)
package ui
