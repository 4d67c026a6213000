// Package debug provides a scrollable event log overlay with connection
// frame counters and the client's own process stats.
package debug

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/emtee40/retrowars/internal/transport"
	"github.com/emtee40/retrowars/internal/tui/theme"
)

const (
	maxEntries     = 200
	sampleInterval = time.Second
)

// Entry is a single event log line.
type Entry struct {
	Time    time.Time
	Kind    string // "net", "game", "err", "sys"
	Message string
}

// Model holds the debug overlay state.
type Model struct {
	Entries []Entry
	Offset  int // scroll offset (from bottom)

	net transport.Stats

	proc      *process.Process
	cpuPct    float64
	rssBytes  uint64
	sampledAt time.Time
}

// New creates an empty debug model.
func New() Model {
	// A failed process handle only hides the cpu/rss readout.
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return Model{proc: proc}
}

// Add appends a log entry and caps the buffer.
func (m *Model) Add(kind, message string) {
	m.Entries = append(m.Entries, Entry{
		Time:    time.Now(),
		Kind:    kind,
		Message: message,
	})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	// Reset scroll to bottom on new entry.
	m.Offset = 0
}

// ScrollUp moves the viewport up.
func (m *Model) ScrollUp(n int) {
	m.Offset += n
	max := len(m.Entries) - 1
	if max < 0 {
		max = 0
	}
	if m.Offset > max {
		m.Offset = max
	}
}

// ScrollDown moves the viewport down.
func (m *Model) ScrollDown(n int) {
	m.Offset -= n
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// SetNetStats updates the connection frame counters.
func (m *Model) SetNetStats(s transport.Stats) {
	m.net = s
}

// Sample refreshes the process stats, at most once per sampleInterval.
func (m *Model) Sample() {
	if m.proc == nil || time.Since(m.sampledAt) < sampleInterval {
		return
	}
	m.sampledAt = time.Now()

	if pct, err := m.proc.CPUPercent(); err == nil {
		m.cpuPct = pct
	}
	if mi, err := m.proc.MemoryInfo(); err == nil {
		m.rssBytes = mi.RSS
	}
}

// panelStyle returns the shared border style for the debug overlay.
func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
}

// View renders the debug log as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}
	visibleLines := height - 8
	if visibleLines < 3 {
		visibleLines = 3
	}

	title := theme.StyleHeader.Render(" DEBUG ")
	stats := theme.StyleDimmed.Render(m.statsLine())
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))

	if len(m.Entries) == 0 {
		body := theme.StyleDimmed.Render("  No events recorded yet.")
		content := lipgloss.JoinVertical(lipgloss.Left, title, stats, "", body, "", help)
		return panelStyle(innerW).Render(content)
	}

	// Build visible lines from bottom (minus offset).
	end := len(m.Entries) - m.Offset
	start := end - visibleLines
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}

	var lines []string
	for i := start; i < end; i++ {
		e := m.Entries[i]
		tsStr := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
		kindStr := lipgloss.NewStyle().Foreground(kindToColor(e.Kind)).Width(4).Render(e.Kind)
		msgStr := e.Message
		if len(msgStr) > innerW-20 && innerW > 20 {
			msgStr = msgStr[:innerW-23] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", tsStr, kindStr, msgStr))
	}

	body := strings.Join(lines, "\n")
	scrollIndicator := ""
	if m.Offset > 0 {
		scrollIndicator = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, stats, body, scrollIndicator, help)
	return panelStyle(innerW).Render(content)
}

// statsLine summarises frame counters and process usage in one row.
func (m Model) statsLine() string {
	line := fmt.Sprintf("in %d  out %d  dropped %d",
		m.net.FramesIn, m.net.FramesOut, m.net.SendsDropped)
	if m.proc != nil {
		line += fmt.Sprintf("  |  cpu %.1f%%  rss %s", m.cpuPct, formatBytes(m.rssBytes))
	}
	return line
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func kindToColor(kind string) lipgloss.Color {
	switch kind {
	case "net":
		return theme.ColorTetris
	case "game":
		return theme.ColorHealthy
	case "err":
		return theme.ColorDanger
	case "sys":
		return theme.ColorWarning
	default:
		return theme.ColorDimmed
	}
}
