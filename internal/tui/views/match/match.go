// Package match renders the in-game scoreboard. Displayed scores chase the
// real ones through a damped spring so big jumps roll instead of teleport,
// and breakpoint crossings flash next to the row that earned them.
package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/emtee40/retrowars/internal/protocol"
	"github.com/emtee40/retrowars/internal/session"
	"github.com/emtee40/retrowars/internal/tui/theme"
)

const (
	// FPS is the animation frame rate the app is expected to tick at.
	FPS = 30

	springFrequency = 6.0
	springDamping   = 1.0

	nameWidth   = 22
	flashFrames = FPS // one second
)

// row is one player's scoreboard line and its animation state.
type row struct {
	player        *session.Player
	target        int64
	shown         float64
	velocity      float64
	flash         int
	flashStrength int
}

// Model holds the scoreboard state.
type Model struct {
	Width int

	spring     harmonica.Spring
	rows       []*row
	byID       map[int64]*row
	meID       int64
	survivorID int64
}

// New creates an empty scoreboard.
func New() Model {
	return Model{
		spring: harmonica.NewSpring(harmonica.FPS(FPS), springFrequency, springDamping),
		byID:   make(map[int64]*row),
	}
}

// SetPlayers replaces the roster, carrying animation state over for players
// that are still present.
func (m *Model) SetPlayers(players []*session.Player, meID int64) {
	rows := make([]*row, 0, len(players))
	byID := make(map[int64]*row, len(players))
	for _, p := range players {
		r, ok := m.byID[p.ID]
		if !ok {
			r = &row{player: p}
		}
		rows = append(rows, r)
		byID[p.ID] = r
	}
	m.rows = rows
	m.byID = byID
	m.meID = meID
}

// SetScore retargets a player's spring. Unknown ids are ignored.
func (m *Model) SetScore(id, score int64) {
	if r, ok := m.byID[id]; ok {
		r.target = score
	}
}

// Flash marks a breakpoint crossing on a player's row.
func (m *Model) Flash(id int64, strength int) {
	if r, ok := m.byID[id]; ok {
		r.flash = flashFrames
		r.flashStrength = strength
	}
}

// SetSurvivor marks the last player standing. Zero clears the marker.
func (m *Model) SetSurvivor(id int64) {
	m.survivorID = id
}

// Reset cuts every row back to zero for a fresh game.
func (m *Model) Reset() {
	for _, r := range m.rows {
		r.target = 0
		r.shown = 0
		r.velocity = 0
		r.flash = 0
		r.flashStrength = 0
	}
	m.survivorID = 0
}

// Animate advances every spring by one frame.
func (m *Model) Animate() {
	for _, r := range m.rows {
		target := float64(r.target)
		if math.Abs(r.shown-target) < 0.5 && math.Abs(r.velocity) < 0.5 {
			r.shown = target
			r.velocity = 0
		} else {
			r.shown, r.velocity = m.spring.Update(r.shown, r.velocity, target)
		}
		if r.flash > 0 {
			r.flash--
		}
	}
}

// View renders the scoreboard, highest score first.
func (m Model) View() string {
	header := theme.StyleHeader.Render("  SCOREBOARD")

	if len(m.rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  Nobody is playing."),
		)
	}

	ordered := make([]*row, len(m.rows))
	copy(ordered, m.rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].target > ordered[j].target
	})

	leader := ordered[0].target
	if leader < 1 {
		leader = 1
	}

	lines := []string{header}
	for i, r := range ordered {
		lines = append(lines, m.renderRow(i, r, leader))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderRow(rank int, r *row, leader int64) string {
	st := r.player.Status()
	status := st.String()
	dead := st == protocol.StatusDead

	name := displayName(r.player.ID)
	if r.player.ID == m.meID {
		name += " (you)"
	}
	if len(name) > nameWidth {
		name = name[:nameWidth-1] + "…"
	}

	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBright)
	if r.player.ID == m.meID {
		nameStyle = nameStyle.Bold(true)
	}
	if dead {
		nameStyle = theme.StyleDimmed
	}

	glyph := lipgloss.NewStyle().Foreground(theme.StatusColor(status)).
		Render(theme.StatusGlyph(status))

	shown := int64(math.Round(r.shown))
	scoreStr := fmt.Sprintf("%8d", shown)

	var b strings.Builder
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %2d│ ", rank+1)))
	b.WriteString(glyph)
	b.WriteByte(' ')
	b.WriteString(nameStyle.Render(name))
	if len(name) < nameWidth {
		b.WriteString(strings.Repeat(" ", nameWidth-len(name)))
	}
	b.WriteByte(' ')
	b.WriteString(m.renderBar(r, leader, dead))
	b.WriteByte(' ')
	b.WriteString(theme.StyleHeader.Render(scoreStr))

	if r.player.ID == m.survivorID {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGold).Render(" ★"))
	}
	if r.flash > 0 {
		marker := fmt.Sprintf(" ⚡%d", r.flashStrength)
		style := lipgloss.NewStyle().Foreground(theme.ColorGold).Bold(true)
		if (r.flash/5)%2 == 1 {
			style = theme.StyleDimmed
		}
		b.WriteString(style.Render(marker))
	}

	return b.String()
}

// renderBar draws a score bar scaled against the current leader.
func (m Model) renderBar(r *row, leader int64, dead bool) string {
	barWidth := m.Width - (2 + 3 + 2 + nameWidth + 1 + 1 + 8 + 4)
	if barWidth < 10 {
		barWidth = 10
	}

	share := r.shown / float64(leader)
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}

	filled := int(share * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	color := theme.ScoreBarColor(float64(r.target) / float64(leader))
	if dead {
		color = theme.ColorDimmed
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	bar += lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("░", empty))
	return bar
}

// displayName renders a stable short label for a player id.
func displayName(id int64) string {
	return fmt.Sprintf("Player %04d", id%10000)
}
