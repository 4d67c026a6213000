// Package theme provides the Lip Gloss color palette and reusable styles
// for the Retrowars TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Game colors, keyed by wire name.
var (
	ColorAsteroids      = lipgloss.Color("#67e8f9")
	ColorMissileCommand = lipgloss.Color("#dc2626")
	ColorSnake          = lipgloss.Color("#22c55e")
	ColorSpaceInvaders  = lipgloss.Color("#a855f7")
	ColorTempest        = lipgloss.Color("#f59e0b")
	ColorTetris         = lipgloss.Color("#3b82f6")
	ColorDefault        = lipgloss.Color("#9ca3af")
)

// Player status colors.
var (
	ColorLobby   = lipgloss.Color("#4b5563")
	ColorPlaying = lipgloss.Color("#16a34a")
	ColorDead    = lipgloss.Color("#dc2626")
)

// Score bar urgency bands, by share of the current leader.
var (
	ColorScoreLow  = lipgloss.Color("#4b5563") // <40% of leader
	ColorScoreMid  = lipgloss.Color("#d97706") // 40-85%
	ColorScoreHigh = lipgloss.Color("#22c55e") // leader's pack
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorGold    = lipgloss.Color("#f59e0b")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// GameColor returns the Lip Gloss color for a game's wire name.
func GameColor(game string) lipgloss.Color {
	switch game {
	case "asteroids":
		return ColorAsteroids
	case "missile_command":
		return ColorMissileCommand
	case "snake":
		return ColorSnake
	case "space_invaders":
		return ColorSpaceInvaders
	case "tempest":
		return ColorTempest
	case "tetris":
		return ColorTetris
	default:
		return ColorDefault
	}
}

// GameTitle returns the display title for a game's wire name.
func GameTitle(game string) string {
	switch game {
	case "asteroids":
		return "Asteroids"
	case "missile_command":
		return "Missile Command"
	case "snake":
		return "Snake"
	case "space_invaders":
		return "Space Invaders"
	case "tempest":
		return "Tempest"
	case "tetris":
		return "Tetris"
	default:
		return "---"
	}
}

// StatusColor returns the color for a player status wire name.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "playing":
		return ColorPlaying
	case "dead":
		return ColorDead
	case "lobby":
		return ColorLobby
	default:
		return ColorDefault
	}
}

// StatusGlyph returns a Unicode glyph for a player status wire name.
func StatusGlyph(status string) string {
	switch status {
	case "playing":
		return "●"
	case "dead":
		return "✗"
	case "lobby":
		return "◌"
	default:
		return "·"
	}
}

// ScoreBarColor returns the bar color for a score's share of the leader.
func ScoreBarColor(share float64) lipgloss.Color {
	switch {
	case share > 0.85:
		return ColorScoreHigh
	case share > 0.4:
		return ColorScoreMid
	default:
		return ColorScoreLow
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)
)
