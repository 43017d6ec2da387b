package logtail

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the hex colors used to highlight log fields.
type Palette struct {
	Muted string
	Debug string
	Info  string
	Warn  string
	Error string
	Name  string
}

// ColorizeLine highlights a zap console line. Columns are tab separated:
// timestamp, level, an optional logger name, the message and an optional
// JSON object of fields. Lines in any other shape are returned unchanged.
func ColorizeLine(line string, p Palette) string {
	parts := strings.Split(line, "\t")
	if len(parts) < 3 {
		return line
	}
	level := strings.TrimSpace(parts[1])
	levelColor, ok := levelColor(p, level)
	if !ok {
		return line
	}

	rest := parts[2:]
	fields := ""
	if last := rest[len(rest)-1]; len(rest) > 1 && strings.HasPrefix(last, "{") {
		fields = last
		rest = rest[:len(rest)-1]
	}
	name := ""
	if len(rest) > 1 {
		name = rest[0]
		rest = rest[1:]
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))
	out := []string{
		muted.Render(parts[0]),
		lipgloss.NewStyle().Foreground(lipgloss.Color(levelColor)).Bold(true).Render(level),
	}
	if name != "" {
		out = append(out, lipgloss.NewStyle().Foreground(lipgloss.Color(p.Name)).Render(name))
	}
	out = append(out, strings.Join(rest, " "))
	if fields != "" {
		out = append(out, muted.Render(fields))
	}
	return strings.Join(out, " ")
}

// ColorizeLines applies ColorizeLine to each line.
func ColorizeLines(lines []string, p Palette) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line, p)
	}
	return out
}

func levelColor(p Palette, level string) (string, bool) {
	switch level {
	case "DEBUG":
		return p.Debug, true
	case "INFO":
		return p.Info, true
	case "WARN":
		return p.Warn, true
	case "ERROR":
		return p.Error, true
	}
	return "", false
}
