// Package lobby renders the pre-game roster: who is waiting, what they were
// last playing, and who the local player is.
package lobby

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emtee40/retrowars/internal/session"
	"github.com/emtee40/retrowars/internal/tui/theme"
)

// Model holds the lobby roster state.
type Model struct {
	Width   int
	meID    int64
	players []*session.Player
}

// New creates an empty lobby model.
func New() Model {
	return Model{}
}

// SetPlayers replaces the roster. Position 0 is the local player.
func (m *Model) SetPlayers(players []*session.Player, meID int64) {
	m.players = players
	m.meID = meID
}

// View renders the roster list.
func (m Model) View() string {
	header := theme.StyleHeader.Render("  LOBBY")

	if len(m.players) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  Waiting for the server to announce players..."),
		)
	}

	lines := []string{header}
	for i, p := range m.players {
		lines = append(lines, m.renderPlayerLine(i, p))
	}
	lines = append(lines, "", theme.StyleDimmed.Render(
		fmt.Sprintf("  %d player(s) in the lobby", len(m.players))))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderPlayerLine(idx int, p *session.Player) string {
	status := p.Status().String()
	game := p.Game().String()

	glyph := lipgloss.NewStyle().Foreground(theme.StatusColor(status)).
		Render(theme.StatusGlyph(status))

	name := displayName(p.ID)
	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBright)
	if p.ID == m.meID {
		name += " (you)"
		nameStyle = nameStyle.Bold(true)
	}

	gameStr := lipgloss.NewStyle().Foreground(theme.GameColor(game)).
		Render(theme.GameTitle(game))

	var b strings.Builder
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %2d│ ", idx+1)))
	b.WriteString(glyph)
	b.WriteByte(' ')
	b.WriteString(nameStyle.Render(name))
	padding := 24 - len(name)
	if padding > 0 {
		b.WriteString(strings.Repeat(" ", padding))
	}
	b.WriteString(gameStr)

	return b.String()
}

// displayName renders a stable short label for a player id.
func displayName(id int64) string {
	return fmt.Sprintf("Player %04d", id%10000)
}
