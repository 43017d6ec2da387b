package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/five82/hudsync/internal/logtail"
)

const (
	headerLines = 4 // logo row, flags row, counters row, status row
	footerLines = 1
	panelChrome = 2 // top and bottom border
)

func (m Model) paneWidth() int {
	return maxInt(m.width-4, 10)
}

func (m Model) paneHeight() int {
	return maxInt(m.height-headerLines-footerLines-panelChrome, 3)
}

// updateViewport refreshes the pane content from the current data.
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	follow := m.viewport.AtBottom()
	if m.showLogs {
		if len(m.logLines) == 0 {
			m.viewport.SetContent(m.theme.Styles().MutedText.Render("No log output yet"))
		} else {
			m.viewport.SetContent(strings.Join(logtail.ColorizeLines(m.logLines, m.theme.Palette()), "\n"))
		}
		if follow {
			m.viewport.GotoBottom()
		}
		return
	}
	m.viewport.SetContent(m.payloadContent())
}

func (m Model) payloadContent() string {
	styles := m.theme.Styles()
	payload := m.snapshot.Payload
	if payload == "" {
		return styles.MutedText.Render("Nothing published yet. Press g to load a game.")
	}
	pretty := gjson.Get(payload, "@pretty").Raw
	if pretty == "" {
		pretty = payload
	}
	var b strings.Builder
	b.WriteString(styles.AccentText.Render("payload"))
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(pretty, "\n"))
	if m.snapshot.Settings != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.AccentText.Render("settings"))
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(gjson.Get(m.snapshot.Settings, "@pretty").Raw, "\n"))
	}
	return b.String()
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n")
	b.WriteString(m.renderFlags(styles))
	b.WriteString("\n")
	b.WriteString(m.renderCounters(styles))
	b.WriteString("\n")
	b.WriteString(m.renderStatus(styles))
	b.WriteString("\n")

	panel := styles.Panel
	if m.showLogs {
		panel = styles.FocusPanel
	}
	b.WriteString(panel.Width(m.paneWidth()).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return b.String()
}

func (m Model) renderHeader(styles Styles) string {
	left := styles.Logo.Render("hudsync")
	pane := "payload"
	if m.showLogs {
		pane = "logs"
	}
	right := styles.MutedText.Render(fmt.Sprintf("%s · %s", pane, m.theme.Name))
	gap := maxInt(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderFlags(styles Styles) string {
	snap := m.snapshot
	flags := []struct {
		label string
		on    bool
		warn  bool // highlight when on
	}{
		{"view", snap.ViewReady, false},
		{"loaded", snap.Loaded, false},
		{"visible", snap.Visible, false},
		{"dispatch", snap.Enabled, false},
		{"combat", snap.InCombat, true},
		{"paused", snap.Paused, true},
		{"menu", snap.MenuOpen, true},
	}
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		switch {
		case !f.on:
			parts = append(parts, styles.FaintText.Render("○ "+f.label))
		case f.warn:
			parts = append(parts, styles.WarningText.Render("● "+f.label))
		default:
			parts = append(parts, styles.SuccessText.Render("● "+f.label))
		}
	}
	return " " + strings.Join(parts, "  ")
}

func (m Model) renderCounters(styles Styles) string {
	snap := m.snapshot
	last := "never"
	if !snap.PublishedAt.IsZero() {
		last = snap.PublishedAt.Local().Format("15:04:05.000")
	}
	text := fmt.Sprintf(" seq %d · publishes %d · forced %d · throttled %d · failures %d · last %s",
		snap.Sequence, snap.Publishes, snap.Forced, snap.Throttled, snap.Failures, last)
	return styles.Text.Render(text)
}

func (m Model) renderStatus(styles Styles) string {
	snap := m.snapshot
	var parts []string
	if m.status != "" {
		parts = append(parts, styles.InfoText.Render(m.status))
	}
	if r := snap.LastStorage; r.Op != "" {
		at := r.At.Local().Format(time.TimeOnly)
		if r.OK {
			parts = append(parts, styles.SuccessText.Render(fmt.Sprintf("%s ok %s", r.Op, at)))
		} else {
			parts = append(parts, styles.DangerText.Render(fmt.Sprintf("%s failed %s: %s", r.Op, at, truncate(r.Err, 60))))
		}
	}
	if snap.LastError != "" {
		parts = append(parts, styles.DangerText.Render(truncate(snap.LastError, 60)))
	}
	if len(parts) == 0 {
		return styles.MutedText.Render(" ready")
	}
	return " " + strings.Join(parts, styles.FaintText.Render(" │ "))
}

func truncate(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	if limit <= 3 {
		return value[:limit]
	}
	return value[:limit-3] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
